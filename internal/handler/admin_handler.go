package handler

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/internal/apiclient"
	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/internal/event"
	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/internal/export"
	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/internal/model"
	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/internal/resource"
	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/internal/session"
	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/internal/util"
	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/internal/view"
)

// noForm is the form type of read-only screens.
type noForm struct{}

// AdminHandler holds the management screens of the dashboard.
type AdminHandler struct {
	Users           *CRUDHandler[model.User, model.UserForm]
	Services        *CRUDHandler[model.Service, model.ServiceForm]
	SubServices     *CRUDHandler[model.SubService, model.SubServiceForm]
	Products        *CRUDHandler[model.Product, model.ProductForm]
	ContactRequests *CRUDHandler[model.ContactRequest, noForm]
	DemoRequests    *CRUDHandler[model.DemoRequest, noForm]
	Companies       *CRUDHandler[model.Company, model.CompanyForm]
}

func NewAdminHandler(site *Site, catalogue *resource.Catalogue, bus event.Bus) *AdminHandler {
	return &AdminHandler{
		Users:           newCRUDHandler(site, bus, "/admin", usersScreen(catalogue)),
		Services:        newCRUDHandler(site, bus, "/admin", servicesScreen(catalogue)),
		SubServices:     newCRUDHandler(site, bus, "/admin", subServicesScreen(catalogue)),
		Products:        newCRUDHandler(site, bus, "/admin", productsScreen(catalogue)),
		ContactRequests: newCRUDHandler(site, bus, "/admin", contactRequestsScreen(catalogue)),
		DemoRequests:    newCRUDHandler(site, bus, "/admin", demoRequestsScreen(catalogue)),
		Companies:       newCRUDHandler(site, bus, "/master", companiesScreen(catalogue)),
	}
}

// Website lists the screens that manage public site content.
func (h *AdminHandler) Website() []Screen {
	return []Screen{h.Services, h.SubServices, h.Products, h.ContactRequests, h.DemoRequests}
}

func servicesScreen(c *resource.Catalogue) screen[model.Service, model.ServiceForm] {
	return screen[model.Service, model.ServiceForm]{
		key:      "services",
		title:    "Services",
		singular: "service",
		columns:  []string{"Name", "Description", "Active", "Updated"},
		empty:    "No services yet.",
		row: func(s model.Service) (int64, []string) {
			return s.ID, []string{s.Name, s.Description, yesNo(s.IsActive), s.UpdatedAt}
		},
		label: func(s model.Service) string { return s.Name },
		list: func(ctx context.Context, sess *session.Session) ([]model.Service, error) {
			return c.Services.List(ctx, sess, nil)
		},
		fields: func(f model.ServiceForm, _ lookups) []view.Field {
			return []view.Field{
				{Name: "name", Label: "Name", Type: "text", Value: f.Name, Required: true},
				{Name: "description", Label: "Description", Type: "textarea", Value: f.Description},
				{Name: "is_active", Label: "Active", Type: "checkbox", Checked: f.IsActive},
			}
		},
		fromItem: func(s model.Service) model.ServiceForm {
			return model.ServiceForm{Name: s.Name, Description: s.Description, IsActive: s.IsActive}
		},
		parse: func(v formValues, _ *multipart.Form) (model.ServiceForm, []apiclient.File, map[string]string) {
			return model.ServiceForm{
				Name:        v.str("name"),
				Description: v.str("description"),
				IsActive:    v.boolean("is_active"),
			}, nil, nil
		},
		create: func(ctx context.Context, sess *session.Session, f model.ServiceForm, _ []apiclient.File) (*model.Service, error) {
			return c.Services.Create(ctx, sess, f)
		},
		update: func(ctx context.Context, sess *session.Session, id int64, f model.ServiceForm, _ []apiclient.File) (*model.Service, error) {
			return c.Services.Update(ctx, sess, id, f)
		},
		remove: c.Services.Delete,
	}
}

func subServicesScreen(c *resource.Catalogue) screen[model.SubService, model.SubServiceForm] {
	return screen[model.SubService, model.SubServiceForm]{
		key:      "subservices",
		title:    "Sub-services",
		singular: "sub-service",
		columns:  []string{"Name", "Service", "Description"},
		empty:    "No sub-services yet.",
		row: func(s model.SubService) (int64, []string) {
			return s.ID, []string{s.Name, s.ServiceName(), s.Description}
		},
		label: func(s model.SubService) string { return s.Name },
		list: func(ctx context.Context, sess *session.Session) ([]model.SubService, error) {
			return c.SubServices.List(ctx, sess, nil)
		},
		lookups: serviceLookups(c, "service"),
		fields: func(f model.SubServiceForm, opts lookups) []view.Field {
			return []view.Field{
				{Name: "name", Label: "Name", Type: "text", Value: f.Name, Required: true},
				{Name: "service", Label: "Service", Type: "select", Required: true, Options: selected(opts["service"], itoa(f.Service))},
				{Name: "description", Label: "Description", Type: "textarea", Value: f.Description},
			}
		},
		fromItem: func(s model.SubService) model.SubServiceForm {
			form := model.SubServiceForm{Name: s.Name, Description: s.Description}
			if s.ServiceDetails != nil {
				form.Service = s.ServiceDetails.ID
			}
			return form
		},
		parse: func(v formValues, _ *multipart.Form) (model.SubServiceForm, []apiclient.File, map[string]string) {
			return model.SubServiceForm{
				Name:        v.str("name"),
				Description: v.str("description"),
				Service:     v.int64("service"),
			}, nil, nil
		},
		create: func(ctx context.Context, sess *session.Session, f model.SubServiceForm, _ []apiclient.File) (*model.SubService, error) {
			return c.SubServices.Create(ctx, sess, f)
		},
		update: func(ctx context.Context, sess *session.Session, id int64, f model.SubServiceForm, _ []apiclient.File) (*model.SubService, error) {
			return c.SubServices.Update(ctx, sess, id, f)
		},
		remove: c.SubServices.Delete,
	}
}

func productsScreen(c *resource.Catalogue) screen[model.Product, model.ProductForm] {
	return screen[model.Product, model.ProductForm]{
		key:      "products",
		title:    "Products",
		singular: "product",
		columns:  []string{"Name", "Client", "Service", "Active", "Images"},
		empty:    "No products yet.",
		row: func(p model.Product) (int64, []string) {
			service := ""
			if p.ServiceDetails != nil {
				service = p.ServiceDetails.Name
			}
			return p.ID, []string{p.Name, p.Client, service, yesNo(p.IsActive), strconv.Itoa(len(p.ImageURLs()))}
		},
		label: func(p model.Product) string { return p.Name },
		list: func(ctx context.Context, sess *session.Session) ([]model.Product, error) {
			return c.Products.List(ctx, sess, nil)
		},
		lookups: serviceLookups(c, "service"),
		fields: func(f model.ProductForm, opts lookups) []view.Field {
			return []view.Field{
				{Name: "name", Label: "Name", Type: "text", Value: f.Name, Required: true},
				{Name: "client", Label: "Client", Type: "text", Value: f.Client},
				{Name: "service", Label: "Service", Type: "select", Options: selected(opts["service"], itoa(f.Service))},
				{Name: "description", Label: "Description", Type: "textarea", Value: f.Description},
				{Name: "is_active", Label: "Active", Type: "checkbox", Checked: f.IsActive},
				{Name: "images", Label: "Images", Type: "file", Accept: "image/*", Multiple: true},
			}
		},
		fromItem: func(p model.Product) model.ProductForm {
			form := model.ProductForm{Name: p.Name, Description: p.Description, Client: p.Client, IsActive: p.IsActive}
			if p.ServiceDetails != nil {
				form.Service = p.ServiceDetails.ID
			}
			return form
		},
		parse: func(v formValues, files *multipart.Form) (model.ProductForm, []apiclient.File, map[string]string) {
			form := model.ProductForm{
				Name:        v.str("name"),
				Description: v.str("description"),
				Client:      v.str("client"),
				Service:     v.int64("service"),
				IsActive:    v.boolean("is_active"),
			}

			images, err := readImages(files, "images")
			if err != nil {
				return form, nil, map[string]string{"images": err.Error()}
			}
			return form, images, nil
		},
		create: c.Products.CreateForm,
		update: c.Products.UpdateForm,
		remove: c.Products.Delete,

		multipart: true,
	}
}

func usersScreen(c *resource.Catalogue) screen[model.User, model.UserForm] {
	roles := []view.Option{
		{Value: model.RoleAdmin, Label: "Admin"},
		{Value: model.RoleEmployee, Label: "Employee"},
		{Value: model.RoleMaster, Label: "Master"},
	}

	return screen[model.User, model.UserForm]{
		key:      "users",
		title:    "Users",
		singular: "user",
		columns:  []string{"Username", "Email", "Name", "Role", "Active"},
		empty:    "No users yet.",
		row: func(u model.User) (int64, []string) {
			name := strings.TrimSpace(u.FirstName + " " + u.LastName)
			return u.ID, []string{u.Username, u.Email, name, u.Role, yesNo(u.IsActive)}
		},
		label: func(u model.User) string { return u.Username },
		list: func(ctx context.Context, sess *session.Session) ([]model.User, error) {
			return c.Users.List(ctx, sess, resource.CreatedBy(apiclient.UserID(sess.AccessToken())))
		},
		fields: func(f model.UserForm, _ lookups) []view.Field {
			return []view.Field{
				{Name: "username", Label: "Username", Type: "text", Value: f.Username, Required: true},
				{Name: "email", Label: "Email", Type: "email", Value: f.Email, Required: true},
				{Name: "first_name", Label: "First name", Type: "text", Value: f.FirstName},
				{Name: "last_name", Label: "Last name", Type: "text", Value: f.LastName},
				{Name: "password", Label: "Password", Type: "password"},
				{Name: "role", Label: "Role", Type: "select", Required: true, Options: selected(roles, f.Role)},
				{Name: "is_active", Label: "Active", Type: "checkbox", Checked: f.IsActive},
			}
		},
		fromItem: func(u model.User) model.UserForm {
			return model.UserForm{
				Username:  u.Username,
				Email:     u.Email,
				FirstName: u.FirstName,
				LastName:  u.LastName,
				Role:      u.Role,
				IsActive:  u.IsActive,
			}
		},
		parse: func(v formValues, _ *multipart.Form) (model.UserForm, []apiclient.File, map[string]string) {
			return model.UserForm{
				Username:  v.str("username"),
				Email:     v.str("email"),
				FirstName: v.str("first_name"),
				LastName:  v.str("last_name"),
				Password:  v.Get("password"),
				Role:      v.str("role"),
				IsActive:  v.boolean("is_active"),
			}, nil, nil
		},
		create: func(ctx context.Context, sess *session.Session, f model.UserForm, _ []apiclient.File) (*model.User, error) {
			f.CreatedBy = apiclient.UserID(sess.AccessToken())
			return c.Users.Create(ctx, sess, f)
		},
		update: func(ctx context.Context, sess *session.Session, id int64, f model.UserForm, _ []apiclient.File) (*model.User, error) {
			return c.Users.Update(ctx, sess, id, f)
		},
		remove: c.Users.Delete,
	}
}

func companiesScreen(c *resource.Catalogue) screen[model.Company, model.CompanyForm] {
	return screen[model.Company, model.CompanyForm]{
		key:      "companies",
		title:    "Companies",
		singular: "company",
		columns:  []string{"Name", "Email", "Phone", "Address", "Location"},
		empty:    "No companies yet.",
		row: func(co model.Company) (int64, []string) {
			return co.ID, []string{co.Name, co.Email, co.PhoneNumber, co.Address, co.Location}
		},
		label: func(co model.Company) string { return co.Name },
		list: func(ctx context.Context, sess *session.Session) ([]model.Company, error) {
			return c.Companies.List(ctx, sess, nil)
		},
		lookups: func(ctx context.Context, sess *session.Session) (lookups, error) {
			users, err := c.Users.List(ctx, sess, nil)
			if err != nil {
				return nil, err
			}
			opts := make([]view.Option, 0, len(users))
			for _, u := range users {
				if u.Role == model.RoleAdmin {
					opts = append(opts, view.Option{Value: strconv.FormatInt(u.ID, 10), Label: u.Username})
				}
			}
			return lookups{"admin": opts}, nil
		},
		fields: func(f model.CompanyForm, opts lookups) []view.Field {
			return []view.Field{
				{Name: "name", Label: "Name", Type: "text", Value: f.Name, Required: true},
				{Name: "email", Label: "Email", Type: "email", Value: f.Email, Required: true},
				{Name: "phone_number", Label: "Phone number", Type: "tel", Value: f.PhoneNumber, Required: true},
				{Name: "address", Label: "Address", Type: "textarea", Value: f.Address, Required: true},
				{Name: "location", Label: "Location", Type: "text", Value: f.Location},
				{Name: "admin", Label: "Admin", Type: "select", Required: true, Options: selected(opts["admin"], itoa(f.Admin))},
			}
		},
		parse: func(v formValues, _ *multipart.Form) (model.CompanyForm, []apiclient.File, map[string]string) {
			return model.CompanyForm{
				Name:        v.str("name"),
				Address:     v.str("address"),
				Location:    v.str("location"),
				Email:       v.str("email"),
				PhoneNumber: v.str("phone_number"),
				Admin:       v.int64("admin"),
			}, nil, nil
		},
		create: func(ctx context.Context, sess *session.Session, f model.CompanyForm, _ []apiclient.File) (*model.Company, error) {
			return c.Companies.Create(ctx, sess, f)
		},
	}
}

func contactRequestsScreen(c *resource.Catalogue) screen[model.ContactRequest, noForm] {
	return screen[model.ContactRequest, noForm]{
		key:      "contact-requests",
		title:    "Contact requests",
		singular: "contact request",
		columns:  []string{"Name", "Email", "Contact number", "Message", "Received"},
		empty:    "No contact requests yet.",
		row: func(cr model.ContactRequest) (int64, []string) {
			return cr.ID, []string{cr.Name, cr.Email, cr.ContactNumber, cr.Message, cr.CreatedAt}
		},
		label: func(cr model.ContactRequest) string { return cr.Name },
		list: func(ctx context.Context, sess *session.Session) ([]model.ContactRequest, error) {
			return c.ContactRequests.List(ctx, sess, nil)
		},
		sheet: export.ContactRequestsSheet,
	}
}

func demoRequestsScreen(c *resource.Catalogue) screen[model.DemoRequest, noForm] {
	return screen[model.DemoRequest, noForm]{
		key:      "demo-requests",
		title:    "Demo requests",
		singular: "demo request",
		columns:  []string{"Name", "Email", "Contact number", "Service", "Preferred time", "Message", "Submitted"},
		empty:    "No demo requests yet.",
		row: func(d model.DemoRequest) (int64, []string) {
			return d.ID, []string{d.Name, d.Email, d.ContactNumber, d.ServiceName(), d.PreferredDatetime, d.Message, d.SubmittedAt}
		},
		label: func(d model.DemoRequest) string { return d.Name },
		list: func(ctx context.Context, sess *session.Session) ([]model.DemoRequest, error) {
			return c.DemoRequests.List(ctx, sess, nil)
		},
		sheet: export.DemoRequestsSheet,
	}
}

// serviceLookups offers the service list as options for field.
func serviceLookups(c *resource.Catalogue, field string) func(context.Context, *session.Session) (lookups, error) {
	return func(ctx context.Context, sess *session.Session) (lookups, error) {
		services, err := c.Services.List(ctx, sess, nil)
		if err != nil {
			return nil, err
		}
		return lookups{field: serviceOptions(services, "")}, nil
	}
}

func serviceOptions(services []model.Service, current string) []view.Option {
	opts := make([]view.Option, 0, len(services))
	for _, s := range services {
		id := strconv.FormatInt(s.ID, 10)
		opts = append(opts, view.Option{Value: id, Label: s.Name, Selected: id == current})
	}
	return opts
}

// selected copies opts marking value as chosen.
func selected(opts []view.Option, value string) []view.Option {
	out := make([]view.Option, len(opts))
	for i, opt := range opts {
		opt.Selected = value != "" && opt.Value == value
		out[i] = opt
	}
	return out
}

// readImages checks every uploaded file under field and returns it ready for the backend.
func readImages(form *multipart.Form, field string) ([]apiclient.File, error) {
	if form == nil {
		return nil, nil
	}

	var files []apiclient.File
	for _, header := range form.File[field] {
		if header.Size == 0 && header.Filename == "" {
			continue
		}

		name, err := util.SanitizeUploadName(header.Filename)
		if err != nil {
			return nil, fmt.Errorf("%s: invalid file name", header.Filename)
		}

		data, err := readUpload(header)
		if err != nil {
			return nil, fmt.Errorf("%s: could not be read", name)
		}

		info, err := util.CheckImage(data)
		if err != nil {
			return nil, fmt.Errorf("%s: only JPEG, PNG, GIF, WebP and BMP images are accepted", name)
		}

		files = append(files, apiclient.File{Field: field, Name: name, Content: bytes.NewReader(data), MimeType: info.MimeType})
	}

	return files, nil
}

func readUpload(header *multipart.FileHeader) ([]byte, error) {
	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
