package handler

import (
	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/internal/model"
	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/internal/view"
)

var publicNav = []view.NavItem{
	{Label: "Home", Href: "/"},
	{Label: "About", Href: "/about"},
	{Label: "Services", Href: "/services"},
	{Label: "Products", Href: "/products"},
	{Label: "Contact", Href: "/contact"},
	{Label: "Book a demo", Href: "/book-demo"},
}

func dashboardNav(role string) []view.NavItem {
	switch role {
	case model.RoleMaster:
		return []view.NavItem{
			{Label: "Dashboard", Href: "/master-dashboard"},
			{Label: "Companies", Href: "/master/companies"},
			{Label: "Users", Href: "/admin/users"},
		}
	case model.RoleAdmin:
		return []view.NavItem{
			{Label: "Dashboard", Href: "/admin"},
			{Label: "Users", Href: "/admin/users"},
			{Label: "Services", Href: "/admin/services"},
			{Label: "Sub-services", Href: "/admin/subservices"},
			{Label: "Products", Href: "/admin/products"},
			{Label: "Contact requests", Href: "/admin/contact-requests"},
			{Label: "Demo requests", Href: "/admin/demo-requests"},
		}
	default:
		return []view.NavItem{{Label: "Dashboard", Href: "/employee"}}
	}
}
