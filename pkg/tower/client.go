package tower

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"tower-admin/pkg/model"
)

const (
	credentialTypesPath = "/api/v2/credential_types/"
	credentialsPath     = "/api/v2/credentials/"
	pingPath            = "/api/v2/ping/"

	fetchTimeout = 10 * time.Second
	pingTimeout  = 5 * time.Second
)

// Client talks to one remote instance's credential-type API per call,
// using the credentials stored on the Instance record. Calls are
// independent and stateless; no retries, callers decide.
type Client struct{}

// CredentialTypePayload is the body sent when creating a type remotely.
type CredentialTypePayload struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Kind        string `json:"kind,omitempty"`
}

type listResponse struct {
	Results []model.RemoteCredentialType `json:"results"`
}

// FetchCredentialTypes lists all credential types an instance reports.
func (Client) FetchCredentialTypes(ctx context.Context, inst model.Instance) ([]model.RemoteCredentialType, error) {
	body, err := doRequest(ctx, inst, http.MethodGet, typesURL(inst), nil)
	if err != nil {
		return nil, err
	}
	var list listResponse
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, &ConnectionError{Instance: inst.Name, Err: fmt.Errorf("decode response: %w", err)}
	}
	return list.Results, nil
}

// FetchCredentialTypeByName issues a filtered listing and returns the
// first match, or nil (no error) when the instance has no such type.
func (Client) FetchCredentialTypeByName(ctx context.Context, inst model.Instance, name string) (*model.RemoteCredentialType, error) {
	u := typesURL(inst) + "?name=" + url.QueryEscape(name)
	body, err := doRequest(ctx, inst, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	var list listResponse
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, &ConnectionError{Instance: inst.Name, Err: fmt.Errorf("decode response: %w", err)}
	}
	if len(list.Results) == 0 {
		return nil, nil
	}
	return &list.Results[0], nil
}

// CreateCredentialType creates a credential type on the instance and
// returns the remote's representation, including server-assigned fields.
func (Client) CreateCredentialType(ctx context.Context, inst model.Instance, payload CredentialTypePayload) (*model.RemoteCredentialType, error) {
	raw, _ := json.Marshal(payload)
	body, err := doRequest(ctx, inst, http.MethodPost, typesURL(inst), raw)
	if err != nil {
		return nil, err
	}
	var created model.RemoteCredentialType
	if err := json.Unmarshal(body, &created); err != nil {
		return nil, &ConnectionError{Instance: inst.Name, Err: fmt.Errorf("decode response: %w", err)}
	}
	return &created, nil
}

// FetchCredentials lists the credentials an instance reports. The raw
// objects are passed through untouched; the proxy endpoint returns them
// verbatim to the caller.
func (Client) FetchCredentials(ctx context.Context, inst model.Instance) ([]json.RawMessage, error) {
	u := strings.TrimRight(inst.URL, "/") + credentialsPath
	body, err := doRequest(ctx, inst, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	var list struct {
		Results []json.RawMessage `json:"results"`
	}
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, &ConnectionError{Instance: inst.Name, Err: fmt.Errorf("decode response: %w", err)}
	}
	return list.Results, nil
}

// TestConnection probes the ping endpoint with the supplied credentials
// and classifies the outcome into an HTTP status and message suitable
// for direct passthrough to the admin API response.
func TestConnection(ctx context.Context, baseURL, username, password string) (int, string) {
	u := strings.TrimRight(baseURL, "/") + pingPath
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return http.StatusServiceUnavailable, "Could not connect to the instance. Check the URL."
	}
	req.SetBasicAuth(username, password)

	client := httpClient(pingTimeout, true)
	resp, err := client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return http.StatusRequestTimeout, "Connection timed out."
		}
		return http.StatusServiceUnavailable, "Could not connect to the instance. Check the URL."
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return http.StatusOK, "Connection successful!"
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return http.StatusUnauthorized, "Authentication failed: Invalid credentials."
	default:
		return resp.StatusCode, fmt.Sprintf("HTTP Error: %d - %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}
}

func typesURL(inst model.Instance) string {
	return strings.TrimRight(inst.URL, "/") + credentialTypesPath
}

func doRequest(ctx context.Context, inst model.Instance, method, u string, payload []byte) ([]byte, error) {
	if inst.Username == "" || inst.Password == "" {
		return nil, &ConfigurationError{Instance: inst.Name}
	}

	req, err := http.NewRequestWithContext(ctx, method, u, bytes.NewReader(payload))
	if err != nil {
		return nil, &ConnectionError{Instance: inst.Name, Err: err}
	}
	req.SetBasicAuth(inst.Username, inst.Password)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	client := httpClient(fetchTimeout, inst.Insecure)
	resp, err := client.Do(req)
	if err != nil {
		return nil, &ConnectionError{Instance: inst.Name, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &ConnectionError{Instance: inst.Name, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return nil, &ConnectionError{Instance: inst.Name, Err: err}
	}
	return buf.Bytes(), nil
}

func httpClient(timeout time.Duration, insecure bool) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: insecure}, //nolint:gosec
		},
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
