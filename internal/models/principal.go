package models

// Principal is the authenticated caller of a ledger operation.
type Principal struct {
	UserID string
}

// Anonymous reports whether no caller identity is present.
func (p Principal) Anonymous() bool {
	return p.UserID == ""
}
