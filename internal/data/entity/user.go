package entity

type UserRole string

const (
	RoleCustomer UserRole = "customer"
	RoleAdmin    UserRole = "admin"
)

func (r UserRole) Valid() bool {
	return r == RoleCustomer || r == RoleAdmin
}

// User is either a password account or an OAuth account (GoogleID set, PasswordHash nil).
type User struct {
	Base
	Name         string   `db:"name"`
	Email        string   `db:"email"`
	PasswordHash *string  `db:"password"`
	Role         UserRole `db:"role"`
	GoogleID     *string  `db:"google_id"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
