package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/internal/model"
	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/internal/resource"
	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/internal/session"
)

// readable is a backend collection the CLI can list and fetch.
type readable[T any] interface {
	List(ctx context.Context, sess *session.Session, query url.Values) ([]T, error)
	Get(ctx context.Context, sess *session.Session, id int64) (*T, error)
}

// collection is a type-erased view of one resource for the generic commands.
type collection struct {
	singular string
	header   []string
	list     func(ctx context.Context, sess *session.Session, query url.Values) ([]any, [][]string, error)
	get      func(ctx context.Context, sess *session.Session, id int64) (any, []string, error)
	remove   func(ctx context.Context, sess *session.Session, id int64) error
}

func collectionOf[T any](r readable[T], singular string, header []string, row func(T) []string) collection {
	return collection{
		singular: singular,
		header:   header,
		list: func(ctx context.Context, sess *session.Session, query url.Values) ([]any, [][]string, error) {
			items, err := r.List(ctx, sess, query)
			if err != nil {
				return nil, nil, err
			}
			raw := make([]any, len(items))
			rows := make([][]string, len(items))
			for i, item := range items {
				raw[i] = item
				rows[i] = row(item)
			}
			return raw, rows, nil
		},
		get: func(ctx context.Context, sess *session.Session, id int64) (any, []string, error) {
			item, err := r.Get(ctx, sess, id)
			if err != nil {
				return nil, nil, err
			}
			return item, row(*item), nil
		},
	}
}

func collections(c *resource.Catalogue) map[string]collection {
	users := collectionOf[model.User](c.Users, "user", []string{"ID", "USERNAME", "EMAIL", "ROLE", "ACTIVE"}, func(u model.User) []string {
		return []string{id(u.ID), u.Username, u.Email, u.Role, strconv.FormatBool(u.IsActive)}
	})
	users.remove = c.Users.Delete

	companies := collectionOf[model.Company](c.Companies, "company", []string{"ID", "NAME", "EMAIL", "PHONE"}, func(co model.Company) []string {
		return []string{id(co.ID), co.Name, co.Email, co.PhoneNumber}
	})

	services := collectionOf[model.Service](c.Services, "service", []string{"ID", "NAME", "ACTIVE", "UPDATED"}, func(s model.Service) []string {
		return []string{id(s.ID), s.Name, strconv.FormatBool(s.IsActive), s.UpdatedAt}
	})
	services.remove = c.Services.Delete

	subservices := collectionOf[model.SubService](c.SubServices, "sub-service", []string{"ID", "NAME", "SERVICE"}, func(s model.SubService) []string {
		return []string{id(s.ID), s.Name, s.ServiceName()}
	})
	subservices.remove = c.SubServices.Delete

	products := collectionOf[model.Product](c.Products, "product", []string{"ID", "NAME", "CLIENT", "ACTIVE", "IMAGES"}, func(p model.Product) []string {
		return []string{id(p.ID), p.Name, p.Client, strconv.FormatBool(p.IsActive), strconv.Itoa(len(p.ImageURLs()))}
	})
	products.remove = c.Products.Delete

	contact := collectionOf[model.ContactRequest](c.ContactRequests, "contact request", []string{"ID", "NAME", "EMAIL", "CONTACT", "RECEIVED"}, func(r model.ContactRequest) []string {
		return []string{id(r.ID), r.Name, r.Email, r.ContactNumber, r.CreatedAt}
	})

	demo := collectionOf[model.DemoRequest](c.DemoRequests, "demo request", []string{"ID", "NAME", "EMAIL", "SERVICE", "PREFERRED"}, func(d model.DemoRequest) []string {
		return []string{id(d.ID), d.Name, d.Email, d.ServiceName(), d.PreferredDatetime}
	})

	return map[string]collection{
		"users":            users,
		"companies":        companies,
		"services":         services,
		"subservices":      subservices,
		"products":         products,
		"contact-requests": contact,
		"demo-requests":    demo,
	}
}

func (e *env) collection(name string) (collection, error) {
	all := collections(e.catalogue)
	if c, ok := all[strings.ToLower(name)]; ok {
		return c, nil
	}
	names := make([]string, 0, len(all))
	for n := range all {
		names = append(names, n)
	}
	sort.Strings(names)
	return collection{}, fmt.Errorf("unknown resource %q, expected one of: %s", name, strings.Join(names, ", "))
}

func newListCmd(e *env) *cobra.Command {
	var createdBy int64
	cmd := &cobra.Command{
		Use:   "list <resource>",
		Short: "List a resource",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := e.collection(args[0])
			if err != nil {
				return err
			}
			sess, err := e.session(cmd.Context())
			if err != nil {
				return err
			}

			var query url.Values
			if createdBy > 0 {
				if args[0] != "users" {
					return fmt.Errorf("--created-by only applies to users")
				}
				query = resource.CreatedBy(createdBy)
			}

			raw, rows, err := c.list(cmd.Context(), sess, query)
			if err != nil {
				return describe(err)
			}
			if e.output == "json" {
				return writeJSON(cmd.OutOrStdout(), raw)
			}
			return writeTable(cmd.OutOrStdout(), c.header, rows)
		},
	}
	cmd.Flags().Int64Var(&createdBy, "created-by", 0, "Only users created by this user id")
	return cmd
}

func newGetCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "get <resource> <id>",
		Short: "Show one item",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, itemID, err := e.target(args)
			if err != nil {
				return err
			}
			sess, err := e.session(cmd.Context())
			if err != nil {
				return err
			}

			item, row, err := c.get(cmd.Context(), sess, itemID)
			if err != nil {
				return describe(err)
			}
			if e.output == "json" {
				return writeJSON(cmd.OutOrStdout(), item)
			}
			return writeTable(cmd.OutOrStdout(), c.header, [][]string{row})
		},
	}
}

func newDeleteCmd(e *env) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <resource> <id>",
		Short: "Delete one item after confirmation",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, itemID, err := e.target(args)
			if err != nil {
				return err
			}
			if c.remove == nil {
				return fmt.Errorf("%s cannot be deleted", args[0])
			}
			sess, err := e.session(cmd.Context())
			if err != nil {
				return err
			}

			if !yes {
				answer, err := e.prompt(cmd, fmt.Sprintf("Delete %s #%d? [y/N] ", c.singular, itemID))
				if err != nil {
					return err
				}
				if a := strings.ToLower(answer); a != "y" && a != "yes" {
					fmt.Fprintln(cmd.OutOrStdout(), "Cancelled")
					return nil
				}
			}

			if err := c.remove(cmd.Context(), sess, itemID); err != nil {
				return describe(err)
			}
			success(cmd.OutOrStdout(), "Deleted %s #%d", c.singular, itemID)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

func newServicesCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{Use: "services", Short: "Service commands"}

	var form model.ServiceForm
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a service",
		RunE: func(cmd *cobra.Command, _ []string) error {
			form.Name = strings.TrimSpace(form.Name)
			if form.Name == "" {
				return fmt.Errorf("--name is required")
			}
			sess, err := e.session(cmd.Context())
			if err != nil {
				return err
			}

			created, err := e.catalogue.Services.Create(cmd.Context(), sess, form)
			if err != nil {
				return describe(err)
			}
			if e.output == "json" {
				return writeJSON(cmd.OutOrStdout(), created)
			}
			success(cmd.OutOrStdout(), "Created service #%d %s", created.ID, created.Name)
			return nil
		},
	}
	create.Flags().StringVar(&form.Name, "name", "", "Service name")
	create.Flags().StringVar(&form.Description, "description", "", "Service description")
	create.Flags().BoolVar(&form.IsActive, "active", true, "Show the service on the public site")

	cmd.AddCommand(create)
	return cmd
}

func (e *env) target(args []string) (collection, int64, error) {
	c, err := e.collection(args[0])
	if err != nil {
		return collection{}, 0, err
	}
	itemID, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil || itemID <= 0 {
		return collection{}, 0, fmt.Errorf("invalid id %q", args[1])
	}
	return c, itemID, nil
}

func writeTable(w io.Writer, header []string, rows [][]string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func id(n int64) string {
	return strconv.FormatInt(n, 10)
}
