package model

const (
	RoleMaster   = "master"
	RoleAdmin    = "admin"
	RoleEmployee = "employee"
)

// LandingPath returns the dashboard a role lands on after sign-in.
func LandingPath(role string) string {
	switch role {
	case RoleMaster:
		return "/master-dashboard"
	case RoleAdmin:
		return "/admin"
	case RoleEmployee:
		return "/employee"
	default:
		return "/"
	}
}

type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Role      string `json:"role"`
	IsActive  bool   `json:"is_active"`
	Company   *int64 `json:"company,omitempty"`
	CreatedBy *int64 `json:"created_by,omitempty"`
}

type Company struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Address     string `json:"address"`
	Location    string `json:"location,omitempty"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	Logo        string `json:"logo,omitempty"`
}

// LoginResult is the backend's answer to a successful sign-in.
type LoginResult struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
	Role    string `json:"role"`
}

type RefreshRequest struct {
	Refresh string `json:"refresh"`
}

type RefreshResult struct {
	Access string `json:"access"`
}
