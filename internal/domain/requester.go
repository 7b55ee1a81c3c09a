package domain

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Requester identifies the authenticated caller of an order operation.
type Requester struct {
	UserID string
	Role   Role
}

func (r Requester) IsAdmin() bool {
	return r.Role == RoleAdmin
}

// CanAccess reports whether r may read or cancel o.
func (r Requester) CanAccess(o *Order) bool {
	return r.IsAdmin() || o.IsOwnedBy(r.UserID)
}
