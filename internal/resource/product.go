package resource

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/internal/apiclient"
	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/internal/model"
	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/internal/session"
)

// Products adds image uploads on top of the plain product collection.
type Products struct {
	*Resource[model.Product]
}

// CreateForm posts form as JSON, or as multipart/form-data when images are attached.
func (p *Products) CreateForm(ctx context.Context, sess *session.Session, form model.ProductForm, images []apiclient.File) (*model.Product, error) {
	if len(images) == 0 {
		return p.Create(ctx, sess, form)
	}
	return p.sendMultipart(ctx, sess, http.MethodPost, p.path, form, images)
}

func (p *Products) UpdateForm(ctx context.Context, sess *session.Session, id int64, form model.ProductForm, images []apiclient.File) (*model.Product, error) {
	if len(images) == 0 {
		return p.Update(ctx, sess, id, form)
	}
	return p.sendMultipart(ctx, sess, http.MethodPut, p.itemPath(id), form, images)
}

func (p *Products) sendMultipart(ctx context.Context, sess *session.Session, method, path string, form model.ProductForm, images []apiclient.File) (*model.Product, error) {
	fields := map[string]string{
		"name":        form.Name,
		"description": form.Description,
		"is_active":   strconv.FormatBool(form.IsActive),
	}
	if form.Client != "" {
		fields["client"] = form.Client
	}
	if form.Service != 0 {
		fields["service"] = strconv.FormatInt(form.Service, 10)
	}

	parts := make([]apiclient.File, 0, len(images)+1)
	for i, img := range images {
		data, err := io.ReadAll(img.Content)
		if err != nil {
			return nil, fmt.Errorf("read image %s: %w", img.Name, err)
		}

		if i == 0 {
			parts = append(parts, apiclient.File{Field: "image", Name: img.Name, Content: bytes.NewReader(data), MimeType: img.MimeType})
		}
		parts = append(parts, apiclient.File{Field: "images", Name: img.Name, Content: bytes.NewReader(data), MimeType: img.MimeType})
	}

	req, err := apiclient.Multipart(method, path, fields, parts)
	if err != nil {
		return nil, err
	}

	var out model.Product
	if err := p.client.DoJSON(ctx, sess, req, &out); err != nil {
		return nil, fmt.Errorf("%s product: %w", verb(method), err)
	}
	return &out, nil
}

func verb(method string) string {
	if method == http.MethodPost {
		return "create"
	}
	return "update"
}
