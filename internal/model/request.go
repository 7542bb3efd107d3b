package model

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RegisterRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role"`
}

type ServiceForm struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	IsActive    bool   `json:"is_active"`
}

type SubServiceForm struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Service     int64  `json:"service" validate:"required"`
}

type ProductForm struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Client      string `json:"client,omitempty"`
	Service     int64  `json:"service,omitempty"`
	IsActive    bool   `json:"is_active"`
}

type UserForm struct {
	Username  string `json:"username" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Password  string `json:"password,omitempty"`
	Role      string `json:"role" validate:"required,oneof=master admin employee"`
	IsActive  bool   `json:"is_active"`
	CreatedBy int64  `json:"created_by,omitempty"`
}

type CompanyForm struct {
	Name        string `json:"name" validate:"required"`
	Address     string `json:"address" validate:"required"`
	Location    string `json:"location,omitempty"`
	Email       string `json:"email" validate:"required,email"`
	PhoneNumber string `json:"phone_number" validate:"required"`
	Admin       int64  `json:"admin" validate:"required"`
}

type ContactForm struct {
	Name          string `json:"name" validate:"required"`
	Email         string `json:"email" validate:"required,email"`
	ContactNumber string `json:"contact_number" validate:"required"`
	Message       string `json:"message" validate:"required"`
}

type DemoForm struct {
	Name              string `json:"name" validate:"required"`
	Email             string `json:"email" validate:"required,email"`
	ContactNumber     string `json:"contact_number" validate:"required"`
	ServiceID         int64  `json:"service_id" validate:"required"`
	PreferredDatetime string `json:"preferred_datetime" validate:"required"`
	Message           string `json:"message"`
}

type DeviceRequest struct {
	Token    string `json:"token" validate:"required"`
	Platform string `json:"platform" validate:"omitempty,oneof=web android ios"`
}

// PushRequest asks the server to broadcast a toast; an empty SessionID targets everyone.
type PushRequest struct {
	SessionID string `json:"session_id,omitempty"`
	Title     string `json:"title"`
	Message   string `json:"message" validate:"required"`
	Level     string `json:"level" validate:"omitempty,oneof=info success error"`
}
