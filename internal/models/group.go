package models

// GroupType is the display category of a group.
type GroupType string

const (
	GroupTypeTrip   GroupType = "TRIP"
	GroupTypeHome   GroupType = "HOME"
	GroupTypeCouple GroupType = "COUPLE"
	GroupTypeOther  GroupType = "OTHER"
)

// NormalizeGroupType maps unknown or empty types to GroupTypeOther.
func NormalizeGroupType(t string) GroupType {
	switch GroupType(t) {
	case GroupTypeTrip, GroupTypeHome, GroupTypeCouple:
		return GroupType(t)
	default:
		return GroupTypeOther
	}
}

// Group is the aggregate root of the ledger: entries belong to exactly one group.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the group (e.g., "Goa Trip 2026").
	Name string

	// Type is the display category shown as a badge by the client.
	Type GroupType

	// Members is the current membership, ordered by join time.
	Members []Member

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}

// Member is a participant of one group. Its ID is unique within that group.
type Member struct {
	ID          string
	DisplayName string
	JoinedAt    int64
}

// MemberIDs returns the IDs of all group members in membership order.
func (g *Group) MemberIDs() []string {
	ids := make([]string, len(g.Members))
	for i, m := range g.Members {
		ids[i] = m.ID
	}
	return ids
}

// HasMember reports whether memberID belongs to the group.
func (g *Group) HasMember(memberID string) bool {
	for _, m := range g.Members {
		if m.ID == memberID {
			return true
		}
	}
	return false
}

// DisplayName returns the member's display name, falling back to the ID.
func (g *Group) DisplayName(memberID string) string {
	for _, m := range g.Members {
		if m.ID == memberID && m.DisplayName != "" {
			return m.DisplayName
		}
	}
	return memberID
}
