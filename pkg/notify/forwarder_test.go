package notify

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fcmServer struct {
	*httptest.Server
	tokenCalls atomic.Int32
	lastBody   atomic.Value
	fail       atomic.Bool
}

func newFCMServer(t *testing.T) *fcmServer {
	t.Helper()
	s := &fcmServer{}
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		s.tokenCalls.Add(1)
		_ = r.ParseForm()
		if r.Form.Get("assertion") == "" {
			t.Errorf("expected signed assertion")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"ya29.test","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/send", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer ya29.test" {
			t.Errorf("unexpected auth header %q", got)
		}
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		s.lastBody.Store(body)
		if s.fail.Load() {
			http.Error(w, `{"error":"UNREGISTERED"}`, http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(`{"name":"projects/demo/messages/1"}`))
	})
	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

func testAccount(t *testing.T) *ServiceAccount {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	pemKey := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)})
	return &ServiceAccount{ProjectID: "demo", PrivateKeyID: "kid", PrivateKey: string(pemKey), ClientEmail: "push@demo.iam.gserviceaccount.com"}
}

func newTestForwarder(t *testing.T, srv *fcmServer) *Forwarder {
	t.Helper()
	f, err := NewForwarder(Config{
		Account:    testAccount(t),
		TokenURL:   srv.URL + "/token",
		SendURL:    srv.URL + "/send",
		HTTPClient: srv.Client(),
	}, MapTokenStore{"42": "device-token"})
	require.NoError(t, err)
	return f
}

func post(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)))
	return rec
}

func TestForwarderSendsPush(t *testing.T) {
	srv := newFCMServer(t)
	f := newTestForwarder(t, srv)

	rec := post(t, f, `{"record":{"user_id":42,"message":"Your task was accepted","id":7,"created_at":"2024-06-01T09:00:00Z"}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.JSONEq(t, `{"name":"projects/demo/messages/1"}`, string(resp.FCMResponse))

	body := srv.lastBody.Load().(map[string]any)
	msg := body["message"].(map[string]any)
	assert.Equal(t, "device-token", msg["token"])
	assert.Equal(t, "7", msg["data"].(map[string]any)["notification_id"])

	rec = post(t, f, `{"record":{"user_id":"42","message":"again"}}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, srv.tokenCalls.Load())
}

func TestForwarderErrors(t *testing.T) {
	srv := newFCMServer(t)
	f := newTestForwarder(t, srv)

	assert.Equal(t, http.StatusBadRequest, post(t, f, `not json`).Code)
	assert.Equal(t, http.StatusBadRequest, post(t, f, `{"record":{"user_id":42}}`).Code)
	assert.Equal(t, http.StatusNotFound, post(t, f, `{"record":{"user_id":9,"message":"hi"}}`).Code)

	srv.fail.Store(true)
	rec := post(t, f, `{"record":{"user_id":42,"message":"hi"}}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "UNREGISTERED")

	get := httptest.NewRecorder()
	f.ServeHTTP(get, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, get.Code)
}

func TestNewForwarderValidatesConfig(t *testing.T) {
	_, err := NewForwarder(Config{}, MapTokenStore{})
	assert.Error(t, err)
	_, err = NewForwarder(Config{Account: &ServiceAccount{ClientEmail: "x", PrivateKey: "y"}}, MapTokenStore{})
	assert.Error(t, err)
	_, err = NewForwarder(Config{Account: testAccount(t)}, nil)
	assert.Error(t, err)
}

func TestLoadServiceAccount(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sa.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"project_id":"demo","client_email":"a@b","private_key":"k"}`), 0o600))
	sa, err := LoadServiceAccount(path)
	require.NoError(t, err)
	assert.Equal(t, "demo", sa.ProjectID)
	_, err = LoadServiceAccount(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
