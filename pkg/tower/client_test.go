package tower

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tower-admin/pkg/model"
)

func testInstance(url string) model.Instance {
	return model.Instance{Name: "lab", URL: url, Username: "admin", Password: "secret"}
}

func typesHandler(types ...model.RemoteCredentialType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "admin" || pass != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		filter := r.URL.Query().Get("name")
		results := []model.RemoteCredentialType{}
		for _, ct := range types {
			if filter == "" || ct.Name == filter {
				results = append(results, ct)
			}
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"results": results})
	}
}

func TestFetchCredentialTypes(t *testing.T) {
	srv := httptest.NewServer(typesHandler(
		model.RemoteCredentialType{ID: 1, Name: "Machine"},
		model.RemoteCredentialType{ID: 2, Name: "Vault"},
	))
	defer srv.Close()

	got, err := Client{}.FetchCredentialTypes(context.Background(), testInstance(srv.URL))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Machine", got[0].Name)
}

func TestFetchCredentialTypesNoCredentials(t *testing.T) {
	inst := model.Instance{Name: "lab", URL: "http://example.invalid"}
	_, err := Client{}.FetchCredentialTypes(context.Background(), inst)
	var cfg *ConfigurationError
	require.ErrorAs(t, err, &cfg)
	assert.Equal(t, "lab", cfg.Instance)
}

func TestFetchCredentialTypesBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := Client{}.FetchCredentialTypes(context.Background(), testInstance(srv.URL))
	var conn *ConnectionError
	require.ErrorAs(t, err, &conn)
	assert.Equal(t, "lab", conn.Instance)
}

func TestFetchCredentialTypesUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := Client{}.FetchCredentialTypes(context.Background(), testInstance(url))
	var conn *ConnectionError
	require.ErrorAs(t, err, &conn)
}

func TestFetchCredentialTypeByName(t *testing.T) {
	srv := httptest.NewServer(typesHandler(model.RemoteCredentialType{ID: 7, Name: "Machine"}))
	defer srv.Close()

	got, err := Client{}.FetchCredentialTypeByName(context.Background(), testInstance(srv.URL), "Machine")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 7, got.ID)

	// Absence is reported as nil, not as an error.
	got, err = Client{}.FetchCredentialTypeByName(context.Background(), testInstance(srv.URL), "Vault")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCreateCredentialType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		var payload CredentialTypePayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(model.RemoteCredentialType{ID: 42, Name: payload.Name, Description: payload.Description})
	}))
	defer srv.Close()

	got, err := Client{}.CreateCredentialType(context.Background(), testInstance(srv.URL), CredentialTypePayload{Name: "Machine", Description: "d"})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 42, got.ID)
	assert.Equal(t, "Machine", got.Name)
}

func TestTestConnection(t *testing.T) {
	okSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, _, ok := r.BasicAuth(); !ok {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer okSrv.Close()

	status, msg := TestConnection(context.Background(), okSrv.URL, "admin", "secret")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Connection successful!", msg)

	authSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer authSrv.Close()

	status, msg = TestConnection(context.Background(), authSrv.URL, "admin", "wrong")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Authentication failed: Invalid credentials.", msg)

	errSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer errSrv.Close()

	status, _ = TestConnection(context.Background(), errSrv.URL, "admin", "secret")
	assert.Equal(t, http.StatusBadGateway, status, "non-auth HTTP errors pass through")

	closed := httptest.NewServer(http.NotFoundHandler())
	url := closed.URL
	closed.Close()

	status, _ = TestConnection(context.Background(), url, "admin", "secret")
	assert.Equal(t, http.StatusServiceUnavailable, status)
}
