package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/internal/model"
	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/pkg/apierror"
)

func loginBackend(t *testing.T) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/app/login/":
			var body model.LoginRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			if body.Password != "secret" {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"detail":"No active account found with the given credentials"}`))
				return
			}
			_ = json.NewEncoder(w).Encode(model.LoginResult{Access: "a", Refresh: "r", Role: "admin"})
		case "/app/master-register/":
			var body model.RegisterRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, model.RoleMaster, body.Role)
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(model.User{ID: 9, Username: body.Username, Email: body.Email, Role: body.Role})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestLogin_Success(t *testing.T) {
	client := newTestClient(loginBackend(t), nil)

	sess, err := client.Login(context.Background(), "alice", "secret")

	require.NoError(t, err)
	assert.Equal(t, "a", sess.AccessToken())
	assert.Equal(t, "r", sess.RefreshToken())
	assert.Equal(t, "admin", sess.Role())
	assert.Equal(t, "alice", sess.Username())
}

func TestLogin_InvalidCredentialsShowsServerMessage(t *testing.T) {
	client := newTestClient(loginBackend(t), nil)

	sess, err := client.Login(context.Background(), "alice", "wrong")

	assert.Nil(t, sess)
	require.Error(t, err)
	assert.Equal(t, "No active account found with the given credentials", apierror.UserMessage(err))
	assert.False(t, IsSessionExpired(err))
}

func TestRegisterMaster_ForcesRole(t *testing.T) {
	client := newTestClient(loginBackend(t), nil)

	user, err := client.RegisterMaster(context.Background(), model.RegisterRequest{
		Username: "root", Email: "root@example.com", Password: "secret1", Role: "admin",
	})

	require.NoError(t, err)
	assert.Equal(t, int64(9), user.ID)
	assert.Equal(t, model.RoleMaster, user.Role)
}
