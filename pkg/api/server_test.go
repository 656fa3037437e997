package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"tower-admin/pkg/audit"
	"tower-admin/pkg/model"
	"tower-admin/pkg/store"
)

func newTestMux(t *testing.T) (*http.ServeMux, store.Store) {
	t.Helper()
	st := store.NewMemoryStore()
	srv := NewServer(st, audit.NewRecorder(st), nil)
	mux := http.NewServeMux()
	srv.RegisterRoutes(mux)

	for _, u := range []struct{ name, role string }{
		{"admin", model.RoleAdmin},
		{"viewer", model.RoleViewer},
	} {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.name+"-pass"), bcrypt.MinCost)
		require.NoError(t, err)
		_, err = st.CreateUser(model.User{Username: u.name, Role: u.role, PasswordHash: string(hash)})
		require.NoError(t, err)
	}
	return mux, st
}

func do(mux *http.ServeMux, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	return rr
}

func login(t *testing.T, mux *http.ServeMux, username string) string {
	t.Helper()
	rr := do(mux, http.MethodPost, "/api/login/", "", map[string]string{
		"username": username,
		"password": username + "-pass",
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var resp struct {
		Access  string `json:"access"`
		Refresh string `json:"refresh"`
		User    struct {
			Username string `json:"username"`
			Role     string `json:"role"`
		} `json:"user"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	require.NotEmpty(t, resp.Access)
	require.NotEmpty(t, resp.Refresh)
	assert.Equal(t, username, resp.User.Username)
	return resp.Access
}

func TestLogin(t *testing.T) {
	mux, _ := newTestMux(t)

	rr := do(mux, http.MethodPost, "/api/login/", "", map[string]string{"username": "admin"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(mux, http.MethodPost, "/api/login/", "", map[string]string{"username": "admin", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = do(mux, http.MethodPost, "/api/login/", "", map[string]string{"username": "ghost", "password": "x"})
	assert.Equal(t, http.StatusUnauthorized, rr.Code, "unknown user looks the same as a bad password")

	login(t, mux, "admin")
}

func TestTokenRefresh(t *testing.T) {
	mux, _ := newTestMux(t)

	rr := do(mux, http.MethodPost, "/api/login/", "", map[string]string{"username": "admin", "password": "admin-pass"})
	require.Equal(t, http.StatusOK, rr.Code)
	var pair struct {
		Access  string `json:"access"`
		Refresh string `json:"refresh"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&pair))

	rr = do(mux, http.MethodPost, "/api/token/refresh/", "", map[string]string{"refresh": pair.Refresh})
	assert.Equal(t, http.StatusOK, rr.Code)

	// An access token is not a refresh token.
	rr = do(mux, http.MethodPost, "/api/token/refresh/", "", map[string]string{"refresh": pair.Access})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestProtectedRequiresToken(t *testing.T) {
	mux, _ := newTestMux(t)

	rr := do(mux, http.MethodGet, "/api/instances/", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = do(mux, http.MethodGet, "/api/instances/", "garbage-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestUserInfo(t *testing.T) {
	mux, _ := newTestMux(t)

	rr := do(mux, http.MethodGet, "/api/user-info/", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	token := login(t, mux, "viewer")
	rr = do(mux, http.MethodGet, "/api/user-info/", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var info userInfo
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&info))
	assert.Equal(t, "viewer", info.Username)
	assert.Equal(t, model.RoleViewer, info.Role)
}

func TestInstanceCRUDWithAudit(t *testing.T) {
	mux, st := newTestMux(t)
	token := login(t, mux, "admin")

	rr := do(mux, http.MethodPost, "/api/instances/", token, model.Instance{
		Name: "lab", URL: "https://lab.example.com", Username: "svc", Password: "secret",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var created model.Instance
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&created))
	assert.Empty(t, created.Password, "password must never come back in responses")

	rr = do(mux, http.MethodPost, "/api/instances/", token, model.Instance{Name: "lab"})
	assert.Equal(t, http.StatusBadRequest, rr.Code, "url is required")

	path := fmt.Sprintf("/api/instances/%d/", created.ID)
	rr = do(mux, http.MethodPut, path, token, map[string]string{"url": "https://lab2.example.com"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var updated model.Instance
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&updated))
	assert.Equal(t, "lab", updated.Name, "omitted fields keep their stored value")
	assert.Equal(t, "https://lab2.example.com", updated.URL)

	rr = do(mux, http.MethodDelete, path, token, nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = do(mux, http.MethodGet, path, token, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	entries, err := st.ListAudit(10)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	// Newest first.
	assert.Equal(t, model.ActionDeleted, entries[0].Action)
	assert.Equal(t, model.ActionUpdated, entries[1].Action)
	assert.Equal(t, model.ActionCreated, entries[2].Action)
	for _, e := range entries {
		assert.Equal(t, "admin", e.Actor)
		assert.Equal(t, "Instance", e.ObjectType)
	}
	require.Contains(t, entries[1].Changes, "url")
	assert.Equal(t, "https://lab2.example.com", entries[1].Changes["url"].To)
	assert.Len(t, entries[1].Changes, 1, "only the changed field is diffed")
}

func TestUsersAdminOnly(t *testing.T) {
	mux, _ := newTestMux(t)

	viewer := login(t, mux, "viewer")
	rr := do(mux, http.MethodGet, "/api/users/", viewer, nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	admin := login(t, mux, "admin")
	rr = do(mux, http.MethodGet, "/api/users/", admin, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var users []model.User
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&users))
	assert.Len(t, users, 2)
	assert.NotContains(t, rr.Body.String(), "password_hash")

	rr = do(mux, http.MethodPost, "/api/users/", admin, userRequest{Username: "bob", Password: "pw"})
	require.Equal(t, http.StatusCreated, rr.Code)
	var bob model.User
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&bob))
	assert.Equal(t, model.RoleViewer, bob.Role, "role defaults to viewer")
}

func TestTestConnectionValidation(t *testing.T) {
	mux, _ := newTestMux(t)
	token := login(t, mux, "admin")

	rr := do(mux, http.MethodPost, "/api/test-connection/", token, map[string]string{"url": "https://x"})
	require.Equal(t, http.StatusBadRequest, rr.Code)
	var resp map[string]string
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "URL, username, and password are required.", resp["message"])
}

func TestTowerCredentialsNoInstance(t *testing.T) {
	mux, _ := newTestMux(t)
	token := login(t, mux, "admin")

	rr := do(mux, http.MethodGet, "/api/tower-credentials/", token, nil)
	require.Equal(t, http.StatusServiceUnavailable, rr.Code)
	var resp map[string]string
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "No instance configured.", resp["detail"])
}

func TestReconcileEndpoints(t *testing.T) {
	remote := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, _, ok := r.BasicAuth(); !ok {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"results": []model.RemoteCredentialType{{ID: 1, Name: "Machine"}},
		})
	}))
	defer remote.Close()

	mux, st := newTestMux(t)
	token := login(t, mux, "admin")

	_, err := st.CreateInstance(model.Instance{Name: "lab", URL: remote.URL, Username: "u", Password: "p"})
	require.NoError(t, err)
	ct, err := st.CreateCredentialType(model.CredentialType{Name: "Machine"})
	require.NoError(t, err)

	rr := do(mux, http.MethodGet, "/api/credential-type-status/", token, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var results []model.ReconciliationResult
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&results))
	require.Len(t, results, 1)
	assert.Equal(t, model.StatusGreen, results[0].Status)
	assert.Equal(t, []string{"lab"}, results[0].PresentIn)

	// Empty instance list is a validation error.
	rr = do(mux, http.MethodPost, "/api/duplicate-credential-type/", token, map[string]interface{}{
		"id": ct.ID, "missing_in_instances": []string{},
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	// Unknown canonical type id maps to 404.
	rr = do(mux, http.MethodPost, "/api/duplicate-credential-type/", token, map[string]interface{}{
		"id": 9999, "missing_in_instances": []string{"lab"},
	})
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = do(mux, http.MethodPost, "/api/verify-credential-type/", token, map[string]interface{}{
		"id": ct.ID, "alternative_name": "Machine", "missing_in_instances": []string{"lab"},
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var verify struct {
		Results []model.ActionOutcome `json:"results"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&verify))
	require.Len(t, verify.Results, 1)
	assert.Equal(t, model.OutcomeFound, verify.Results[0].Status)
}
