package model

type Service struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	IsActive    bool   `json:"is_active"`
	CreatedAt   string `json:"created_at,omitempty"`
	UpdatedAt   string `json:"updated_at,omitempty"`
}

type SubService struct {
	ID             int64    `json:"id"`
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	ServiceDetails *Service `json:"service_details,omitempty"`
}

// ServiceName returns the parent service name, or "" when the backend omitted it.
func (s SubService) ServiceName() string {
	if s.ServiceDetails == nil {
		return ""
	}
	return s.ServiceDetails.Name
}

type ProductImage struct {
	ID    int64  `json:"id"`
	Image string `json:"image"`
}

type Product struct {
	ID             int64          `json:"id"`
	Name           string         `json:"name"`
	Description    string         `json:"description"`
	Client         string         `json:"client,omitempty"`
	Image          string         `json:"image,omitempty"`
	Images         []ProductImage `json:"images,omitempty"`
	ServiceDetails *Service       `json:"service_details,omitempty"`
	IsActive       bool           `json:"is_active"`
	CreatedAt      string         `json:"created_at,omitempty"`
	UpdatedAt      string         `json:"updated_at,omitempty"`
}

// ImageURLs lists every image attached to the product, the legacy single image first.
func (p Product) ImageURLs() []string {
	urls := make([]string, 0, len(p.Images)+1)
	if p.Image != "" {
		urls = append(urls, p.Image)
	}
	for _, img := range p.Images {
		if img.Image != "" && img.Image != p.Image {
			urls = append(urls, img.Image)
		}
	}
	return urls
}

type ContactRequest struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	ContactNumber string `json:"contact_number"`
	Message       string `json:"message"`
	CreatedAt     string `json:"created_at,omitempty"`
}

type ServiceRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type DemoRequest struct {
	ID                int64       `json:"id"`
	Name              string      `json:"name"`
	Email             string      `json:"email"`
	ContactNumber     string      `json:"contact_number"`
	Service           *ServiceRef `json:"service,omitempty"`
	PreferredDatetime string      `json:"preferred_datetime"`
	Message           string      `json:"message"`
	SubmittedAt       string      `json:"submitted_at,omitempty"`
}

func (d DemoRequest) ServiceName() string {
	if d.Service == nil {
		return ""
	}
	return d.Service.Name
}

type Device struct {
	ID       int64  `json:"id,omitempty"`
	Token    string `json:"token"`
	Platform string `json:"platform"`
}
