package resource

import (
	"net/url"
	"strconv"

	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/internal/apiclient"
	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/internal/model"
)

const (
	UsersPath           = "/app/usermanagement/"
	CompaniesPath       = "/app/company-with-admin/"
	ServicesPath        = "/website/service/"
	SubServicesPath     = "/website/subservice/"
	ProductsPath        = "/website/product/"
	ContactRequestsPath = "/website/contactrequest/"
	DemoRequestsPath    = "/website/demorequest/"
	DevicesPath         = "/notifications/devices/"
)

// Catalogue holds one client per backend collection.
type Catalogue struct {
	Users           *Resource[model.User]
	Companies       *Resource[model.Company]
	Services        *Resource[model.Service]
	SubServices     *Resource[model.SubService]
	Products        *Products
	ContactRequests *ReadOnly[model.ContactRequest]
	DemoRequests    *ReadOnly[model.DemoRequest]
	Devices         *Resource[model.Device]
}

func NewCatalogue(client *apiclient.Client) *Catalogue {
	return &Catalogue{
		Users:           New[model.User](client, "users", UsersPath),
		Companies:       New[model.Company](client, "companies", CompaniesPath),
		Services:        New[model.Service](client, "services", ServicesPath),
		SubServices:     New[model.SubService](client, "subservices", SubServicesPath),
		Products:        &Products{Resource: New[model.Product](client, "products", ProductsPath)},
		ContactRequests: NewReadOnly[model.ContactRequest](client, "contact requests", ContactRequestsPath),
		DemoRequests:    NewReadOnly[model.DemoRequest](client, "demo requests", DemoRequestsPath),
		Devices:         New[model.Device](client, "devices", DevicesPath),
	}
}

// CreatedBy filters the user list to accounts created by userID.
func CreatedBy(userID int64) url.Values {
	if userID <= 0 {
		return nil
	}
	return url.Values{"created_by": {strconv.FormatInt(userID, 10)}}
}
