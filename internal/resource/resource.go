package resource

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/internal/apiclient"
	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/internal/session"
)

// Resource is a REST collection on the backend. Every call is exactly one request.
type Resource[T any] struct {
	client *apiclient.Client
	name   string
	path   string
}

func New[T any](client *apiclient.Client, name, path string) *Resource[T] {
	return &Resource[T]{client: client, name: name, path: path}
}

func (r *Resource[T]) Name() string { return r.name }

func (r *Resource[T]) Path() string { return r.path }

func (r *Resource[T]) itemPath(id int64) string {
	return r.path + strconv.FormatInt(id, 10) + "/"
}

func (r *Resource[T]) List(ctx context.Context, sess *session.Session, query url.Values) ([]T, error) {
	resp, err := r.client.Do(ctx, sess, apiclient.NewRequest(http.MethodGet, r.path).WithQuery(query))
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", r.name, err)
	}

	items, err := decodeList[T](resp.Body)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", r.name, err)
	}

	return items, nil
}

func (r *Resource[T]) Get(ctx context.Context, sess *session.Session, id int64) (*T, error) {
	var out T
	if err := r.client.DoJSON(ctx, sess, apiclient.NewRequest(http.MethodGet, r.itemPath(id)), &out); err != nil {
		return nil, fmt.Errorf("get %s %d: %w", r.name, id, err)
	}
	return &out, nil
}

func (r *Resource[T]) Create(ctx context.Context, sess *session.Session, body any) (*T, error) {
	req, err := apiclient.JSON(http.MethodPost, r.path, body)
	if err != nil {
		return nil, err
	}

	var out T
	if err := r.client.DoJSON(ctx, sess, req, &out); err != nil {
		return nil, fmt.Errorf("create %s: %w", r.name, err)
	}
	return &out, nil
}

func (r *Resource[T]) Update(ctx context.Context, sess *session.Session, id int64, body any) (*T, error) {
	req, err := apiclient.JSON(http.MethodPut, r.itemPath(id), body)
	if err != nil {
		return nil, err
	}

	var out T
	if err := r.client.DoJSON(ctx, sess, req, &out); err != nil {
		return nil, fmt.Errorf("update %s %d: %w", r.name, id, err)
	}
	return &out, nil
}

func (r *Resource[T]) Delete(ctx context.Context, sess *session.Session, id int64) error {
	if _, err := r.client.Do(ctx, sess, apiclient.NewRequest(http.MethodDelete, r.itemPath(id))); err != nil {
		return fmt.Errorf("delete %s %d: %w", r.name, id, err)
	}
	return nil
}

// ReadOnly is a collection the dashboard only reads. The public site submits to it
// anonymously.
type ReadOnly[T any] struct {
	inner *Resource[T]
}

func NewReadOnly[T any](client *apiclient.Client, name, path string) *ReadOnly[T] {
	return &ReadOnly[T]{inner: New[T](client, name, path)}
}

func (r *ReadOnly[T]) Name() string { return r.inner.name }

func (r *ReadOnly[T]) List(ctx context.Context, sess *session.Session, query url.Values) ([]T, error) {
	return r.inner.List(ctx, sess, query)
}

func (r *ReadOnly[T]) Get(ctx context.Context, sess *session.Session, id int64) (*T, error) {
	return r.inner.Get(ctx, sess, id)
}

// Submit posts body without credentials.
func (r *ReadOnly[T]) Submit(ctx context.Context, body any) (*T, error) {
	req, err := apiclient.JSON(http.MethodPost, r.inner.path, body)
	if err != nil {
		return nil, err
	}
	req.Anonymous = true

	var out T
	if err := r.inner.client.DoJSON(ctx, nil, req, &out); err != nil {
		return nil, fmt.Errorf("submit %s: %w", r.inner.name, err)
	}
	return &out, nil
}

// decodeList accepts a bare JSON array or a paginated {"results": [...]} object.
func decodeList[T any](body []byte) ([]T, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return []T{}, nil
	}

	if trimmed[0] == '{' {
		var page struct {
			Results []T `json:"results"`
		}
		if err := json.Unmarshal(trimmed, &page); err != nil {
			return nil, fmt.Errorf("decode page: %w", err)
		}
		if page.Results == nil {
			page.Results = []T{}
		}
		return page.Results, nil
	}

	var items []T
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, fmt.Errorf("decode list: %w", err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}
