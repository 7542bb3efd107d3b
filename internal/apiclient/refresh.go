package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/internal/model"
	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/internal/session"
)

var jwtParser = jwt.NewParser()

// tokenExpired reports whether token is a JWT whose exp claim is in the past.
// Opaque or malformed tokens are left to the backend to judge.
func tokenExpired(token string) bool {
	if token == "" {
		return false
	}

	claims := jwt.RegisteredClaims{}
	if _, _, err := jwtParser.ParseUnverified(token, &claims); err != nil {
		return false
	}

	if claims.ExpiresAt == nil {
		return false
	}

	return !claims.ExpiresAt.After(time.Now())
}

// UserID returns the user_id claim of a JWT access token, or 0 when the token
// is opaque or carries no usable id.
func UserID(token string) int64 {
	claims := jwt.MapClaims{}
	if _, _, err := jwtParser.ParseUnverified(token, claims); err != nil {
		return 0
	}

	switch v := claims["user_id"].(type) {
	case float64:
		return int64(v)
	case string:
		id, _ := strconv.ParseInt(v, 10, 64)
		return id
	}
	return 0
}

// refresh exchanges the session's refresh token for a new access token. Callers
// sharing a session id share one backend call. stale is the access token the caller
// last used: if the store already holds a different one, it is adopted instead.
func (c *Client) refresh(ctx context.Context, sess *session.Session, stale string, trigger string) error {
	id := sess.ID()
	refreshToken := sess.RefreshToken()

	refreshCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
	defer cancel()

	v, err, _ := c.refreshes.Do(id, func() (any, error) {
		if current := c.storedAccess(refreshCtx, id); current != "" && current != stale && !tokenExpired(current) {
			return current, nil
		}

		access, err := c.requestAccess(refreshCtx, refreshToken)
		c.metrics.ObserveRefresh(trigger, err == nil)
		if err != nil {
			return nil, err
		}

		sess.SetAccess(access)
		if c.store != nil {
			if err := c.store.Save(refreshCtx, sess); err != nil {
				c.log.Error("save refreshed session", "session_id", id, "error", err)
			}
		}

		c.log.Info("access token refreshed", "session_id", id, "trigger", trigger)
		return access, nil
	})

	if err != nil {
		c.log.Warn("token refresh failed; session ended", "session_id", id, "trigger", trigger, "error", err)
		sess.Invalidate()
		if c.store != nil {
			if delErr := c.store.Delete(refreshCtx, id); delErr != nil {
				c.log.Error("delete expired session", "session_id", id, "error", delErr)
			}
		}
		return fmt.Errorf("%w: %w", model.ErrSessionExpired, err)
	}

	sess.SetAccess(v.(string))
	return nil
}

func (c *Client) storedAccess(ctx context.Context, id string) string {
	if c.store == nil {
		return ""
	}

	stored, err := c.store.Get(ctx, id)
	if err != nil {
		return ""
	}

	return stored.AccessToken()
}

func (c *Client) requestAccess(ctx context.Context, refreshToken string) (string, error) {
	req, err := JSON(http.MethodPost, c.refreshPath, model.RefreshRequest{Refresh: refreshToken})
	if err != nil {
		return "", err
	}
	req.Anonymous = true

	resp, err := c.send(ctx, req, "")
	if err != nil {
		return "", err
	}

	if resp.Status < 200 || resp.Status > 299 {
		return "", statusError(resp.Status, resp.Body)
	}

	var out model.RefreshResult
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return "", fmt.Errorf("decode refresh response: %w", err)
	}

	if strings.TrimSpace(out.Access) == "" {
		return "", errors.New("refresh response carried no access token")
	}

	return out.Access, nil
}
