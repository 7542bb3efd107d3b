package apiclient

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/internal/model"
	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/internal/session"
)

const (
	loginPath          = "/app/login/"
	masterRegisterPath = "/app/master-register/"
)

// Login signs in against the backend and returns a new, unsaved session.
func (c *Client) Login(ctx context.Context, username, password string) (*session.Session, error) {
	req, err := JSON(http.MethodPost, loginPath, model.LoginRequest{Username: username, Password: password})
	if err != nil {
		return nil, err
	}
	req.Anonymous = true

	var out model.LoginResult
	if err := c.DoJSON(ctx, nil, req, &out); err != nil {
		return nil, err
	}

	if strings.TrimSpace(out.Access) == "" {
		return nil, errors.New("login: response carried no access token")
	}

	return session.Create(username, out.Access, out.Refresh, out.Role), nil
}

// RegisterMaster creates a master account. The role is always forced to master.
func (c *Client) RegisterMaster(ctx context.Context, form model.RegisterRequest) (*model.User, error) {
	form.Role = model.RoleMaster

	req, err := JSON(http.MethodPost, masterRegisterPath, form)
	if err != nil {
		return nil, err
	}
	req.Anonymous = true

	var out model.User
	if err := c.DoJSON(ctx, nil, req, &out); err != nil {
		return nil, err
	}

	return &out, nil
}
