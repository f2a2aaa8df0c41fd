package entity

// Identity is a verified caller. Engines trust it as-is and never check
// credentials themselves; it is only built by the identity resolver.
type Identity struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Nickname string `json:"nickname"`
}

func (i Identity) IsZero() bool {
	return i.UserID == ""
}
