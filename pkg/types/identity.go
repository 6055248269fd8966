package types

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Identity is the authenticated caller. It is passed explicitly to every
// settlement and access call; a nil *Identity means anonymous.
type Identity struct {
	UserID string `json:"user_id"`
	Role   Role   `json:"role"`
}

func (i *Identity) Authenticated() bool {
	return i != nil && i.UserID != ""
}

func (i *Identity) IsAdmin() bool {
	return i.Authenticated() && i.Role == RoleAdmin
}

func (i *Identity) Is(userID string) bool {
	return i.Authenticated() && i.UserID == userID
}
