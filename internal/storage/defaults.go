package storage

import (
	"time"

	"github.com/google/uuid"
	"github.com/mmynk/splitledger/internal/models"
)

// FillEntryDefaults generates the ID and CreatedAt of an entry when they are not set.
func FillEntryDefaults(entry models.Entry) {
	now := time.Now().Unix()
	switch e := entry.(type) {
	case *models.Expense:
		if e.ID == "" {
			e.ID = uuid.New().String()
		}
		if e.CreatedAt == 0 {
			e.CreatedAt = now
		}
	case *models.Settlement:
		if e.ID == "" {
			e.ID = uuid.New().String()
		}
		if e.CreatedAt == 0 {
			e.CreatedAt = now
		}
	}
}

// FillGroupDefaults generates the ID and timestamps of a new group and its members.
func FillGroupDefaults(group *models.Group) {
	if group.ID == "" {
		group.ID = uuid.New().String()
	}
	if group.CreatedAt == 0 {
		group.CreatedAt = time.Now().Unix()
	}
	group.Type = models.NormalizeGroupType(string(group.Type))
	for i := range group.Members {
		if group.Members[i].JoinedAt == 0 {
			group.Members[i].JoinedAt = group.CreatedAt
		}
	}
}

// CloneEntry returns a deep copy so stored entries cannot be mutated by callers.
func CloneEntry(entry models.Entry) models.Entry {
	switch e := entry.(type) {
	case *models.Expense:
		c := *e
		c.Shares = append([]models.Share(nil), e.Shares...)
		return &c
	case *models.Settlement:
		c := *e
		return &c
	default:
		return entry
	}
}

// CloneGroup returns a deep copy of group.
func CloneGroup(group *models.Group) *models.Group {
	c := *group
	c.Members = append([]models.Member(nil), group.Members...)
	return &c
}
