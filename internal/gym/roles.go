package gym

// Role determines which capabilities an authenticated account has.
type Role string

const (
	RoleStudent Role = "student"
	RoleCoach   Role = "coach"
	RoleAdmin   Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleCoach, RoleAdmin:
		return true
	}
	return false
}
