package reconcile

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tower-admin/pkg/model"
	"tower-admin/pkg/store"
	"tower-admin/pkg/tower"
)

const (
	testUser = "admin"
	testPass = "secret"
)

// fakeTower serves a minimal credential-type API backed by a mutable
// in-memory list.
type fakeTower struct {
	mu    sync.Mutex
	types []model.RemoteCredentialType
	srv   *httptest.Server
}

func newFakeTower(t *testing.T, names ...string) *fakeTower {
	t.Helper()
	f := &fakeTower{}
	for i, n := range names {
		f.types = append(f.types, model.RemoteCredentialType{ID: i + 1, Name: n})
	}
	f.srv = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeTower) handle(w http.ResponseWriter, r *http.Request) {
	user, pass, ok := r.BasicAuth()
	if !ok || user != testUser || pass != testPass {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	if !strings.HasPrefix(r.URL.Path, "/api/v2/credential_types/") {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	switch r.Method {
	case http.MethodGet:
		filter := r.URL.Query().Get("name")
		results := []model.RemoteCredentialType{}
		for _, ct := range f.types {
			if filter == "" || ct.Name == filter {
				results = append(results, ct)
			}
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"results": results})
	case http.MethodPost:
		var payload model.RemoteCredentialType
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		payload.ID = len(f.types) + 1
		f.types = append(f.types, payload)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(payload)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (f *fakeTower) has(name string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ct := range f.types {
		if ct.Name == name {
			return true
		}
	}
	return false
}

func seedInstance(t *testing.T, st store.Store, name, url string) {
	t.Helper()
	_, err := st.CreateInstance(model.Instance{
		Name:     name,
		URL:      url,
		Username: testUser,
		Password: testPass,
	})
	require.NoError(t, err)
}

func seedType(t *testing.T, st store.Store, name string) model.CredentialType {
	t.Helper()
	ct, err := st.CreateCredentialType(model.CredentialType{Name: name, Description: "test type"})
	require.NoError(t, err)
	return ct
}

// unreachableURL returns an address nothing listens on.
func unreachableURL(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	return url
}

func TestComputeStatusNoInstances(t *testing.T) {
	st := store.NewMemoryStore()
	seedType(t, st, "Machine")

	results, err := New(st, tower.Client{}).ComputeStatus(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, model.StatusNotApplicable, results[0].Status)
	assert.Empty(t, results[0].PresentIn)
	assert.Empty(t, results[0].MissingIn)
}

func TestComputeStatusAllPresent(t *testing.T) {
	st := store.NewMemoryStore()
	seedType(t, st, "Machine")
	for _, name := range []string{"alpha", "beta"} {
		seedInstance(t, st, name, newFakeTower(t, "Machine", "Vault").srv.URL)
	}

	results, err := New(st, tower.Client{}).ComputeStatus(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, model.StatusGreen, results[0].Status)
	assert.Equal(t, []string{"alpha", "beta"}, results[0].PresentIn)
	assert.Empty(t, results[0].MissingIn)
}

func TestComputeStatusThresholds(t *testing.T) {
	cases := []struct {
		name    string
		present int
		total   int
		want    string
	}{
		{"three of four", 3, 4, model.StatusOrange},
		{"one of four", 1, 4, model.StatusRed},
		{"half", 2, 4, model.StatusRed},
		{"all", 4, 4, model.StatusGreen},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			st := store.NewMemoryStore()
			seedType(t, st, "Machine")
			for i := 0; i < tc.total; i++ {
				name := string(rune('a' + i))
				if i < tc.present {
					seedInstance(t, st, name, newFakeTower(t, "Machine").srv.URL)
				} else {
					seedInstance(t, st, name, newFakeTower(t, "Other").srv.URL)
				}
			}
			results, err := New(st, tower.Client{}).ComputeStatus(context.Background())
			require.NoError(t, err)
			require.Len(t, results, 1)
			assert.Equal(t, tc.want, results[0].Status)
		})
	}
}

func TestComputeStatusFailingInstanceIsIsolated(t *testing.T) {
	st := store.NewMemoryStore()
	seedType(t, st, "Machine")
	seedInstance(t, st, "a", newFakeTower(t, "Machine").srv.URL)
	seedInstance(t, st, "b", newFakeTower(t, "Machine").srv.URL)
	seedInstance(t, st, "c", newFakeTower(t, "Machine").srv.URL)
	seedInstance(t, st, "d", unreachableURL(t))

	results, err := New(st, tower.Client{}).ComputeStatus(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 1)

	res := results[0]
	assert.Equal(t, []string{"a", "b", "c"}, res.PresentIn)
	require.Len(t, res.MissingIn, 1)
	assert.True(t, strings.HasPrefix(res.MissingIn[0], "d (error:"), "missing entry %q should carry the error", res.MissingIn[0])
	// 3 of 4 reachable and present -> Orange, the outage never flips it to Red.
	assert.Equal(t, model.StatusOrange, res.Status)
}

func TestComputeStatusMatchPolicy(t *testing.T) {
	st := store.NewMemoryStore()
	seedType(t, st, "Machine")
	seedInstance(t, st, "a", newFakeTower(t, " machine ").srv.URL)

	eng := New(st, tower.Client{})
	results, err := eng.ComputeStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.StatusRed, results[0].Status, "exact matching by default")

	eng.Match = MatchPolicy{IgnoreCase: true, TrimSpace: true}
	results, err = eng.ComputeStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.StatusGreen, results[0].Status)
}

func TestDuplicateMissingValidation(t *testing.T) {
	st := store.NewMemoryStore()
	ct := seedType(t, st, "Machine")
	eng := New(st, tower.Client{})

	_, err := eng.DuplicateMissing(context.Background(), ct.ID, nil)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	_, err = eng.DuplicateMissing(context.Background(), 9999, []string{"a"})
	var nferr *NotFoundError
	require.ErrorAs(t, err, &nferr)
}

func TestDuplicateMissingIdempotent(t *testing.T) {
	st := store.NewMemoryStore()
	ct := seedType(t, st, "Machine")
	ft := newFakeTower(t, "Vault")
	seedInstance(t, st, "a", ft.srv.URL)
	eng := New(st, tower.Client{})

	outcomes, err := eng.DuplicateMissing(context.Background(), ct.ID, []string{"a"})
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.Equal(t, model.OutcomeDuplicated, outcomes[0].Status)
	assert.True(t, ft.has("Machine"), "type should exist remotely after duplication")

	// The type now exists; the re-check must report already_exists
	// instead of creating a second copy.
	outcomes, err = eng.DuplicateMissing(context.Background(), ct.ID, []string{"a"})
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.Equal(t, model.OutcomeAlreadyExists, outcomes[0].Status)
}

func TestDuplicateMissingMixedBatch(t *testing.T) {
	st := store.NewMemoryStore()
	ct := seedType(t, st, "Machine")
	seedInstance(t, st, "a", newFakeTower(t, "Vault").srv.URL)
	seedInstance(t, st, "c", unreachableURL(t))
	eng := New(st, tower.Client{})

	outcomes, err := eng.DuplicateMissing(context.Background(), ct.ID, []string{"a", "ghost", "c"})
	require.NoError(t, err)
	require.Len(t, outcomes, 3)

	assert.Equal(t, model.OutcomeDuplicated, outcomes[0].Status)
	assert.Equal(t, "ghost", outcomes[1].Instance)
	assert.Equal(t, model.OutcomeInstanceNotFound, outcomes[1].Status)
	assert.Equal(t, model.OutcomeError, outcomes[2].Status)
	assert.NotEmpty(t, outcomes[2].Message)
}

func TestVerifyByAlternateName(t *testing.T) {
	st := store.NewMemoryStore()
	ct := seedType(t, st, "Machine")
	seedInstance(t, st, "a", newFakeTower(t, "Machine (legacy)").srv.URL)
	seedInstance(t, st, "b", newFakeTower(t, "Vault").srv.URL)
	eng := New(st, tower.Client{})

	outcomes, err := eng.VerifyByAlternateName(context.Background(), ct.ID, "Machine (legacy)", []string{"a", "b", "ghost"})
	require.NoError(t, err)
	require.Len(t, outcomes, 3)

	assert.Equal(t, model.OutcomeFound, outcomes[0].Status)
	assert.Equal(t, "Machine (legacy)", outcomes[0].Name)
	assert.Equal(t, model.OutcomeNotFound, outcomes[1].Status)
	assert.Equal(t, model.OutcomeInstanceNotFound, outcomes[2].Status)
}

func TestVerifyByAlternateNameValidation(t *testing.T) {
	st := store.NewMemoryStore()
	ct := seedType(t, st, "Machine")
	eng := New(st, tower.Client{})

	_, err := eng.VerifyByAlternateName(context.Background(), ct.ID, "", []string{"a"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	_, err = eng.VerifyByAlternateName(context.Background(), ct.ID, "alt", nil)
	require.ErrorAs(t, err, &verr)
}
