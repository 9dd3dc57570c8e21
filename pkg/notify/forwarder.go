// Package notify forwards new notification rows to Firebase Cloud Messaging.
// It is the webhook the backend calls whenever a notification is inserted.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/jwt"

	"github.com/nearbytask/admin-dashboard/pkg/logger"
)

const (
	messagingScope  = "https://www.googleapis.com/auth/firebase.messaging"
	defaultTokenURL = "https://oauth2.googleapis.com/token"
	defaultSendURL  = "https://fcm.googleapis.com/v1/projects/%s/messages:send"
	defaultTitle    = "NearByTask"
)

// ErrTokenNotFound is returned by a TokenStore with no token for the user.
var ErrTokenNotFound = errors.New("notify: device token not found")

// TokenStore resolves a user's device messaging token.
type TokenStore interface {
	DeviceToken(ctx context.Context, userID string) (string, error)
}

// MapTokenStore is a TokenStore over a fixed map.
type MapTokenStore map[string]string

// DeviceToken looks up userID.
func (m MapTokenStore) DeviceToken(_ context.Context, userID string) (string, error) {
	if token := m[userID]; token != "" {
		return token, nil
	}
	return "", ErrTokenNotFound
}

// ServiceAccount is the subset of a Google service account key file used for
// the JWT exchange.
type ServiceAccount struct {
	ProjectID    string `json:"project_id"`
	PrivateKeyID string `json:"private_key_id"`
	PrivateKey   string `json:"private_key"`
	ClientEmail  string `json:"client_email"`
}

// LoadServiceAccount reads a service account key file.
func LoadServiceAccount(path string) (*ServiceAccount, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("notify: read credentials: %w", err)
	}
	var sa ServiceAccount
	if err := json.Unmarshal(data, &sa); err != nil {
		return nil, fmt.Errorf("notify: decode credentials: %w", err)
	}
	return &sa, nil
}

// Config configures a Forwarder.
type Config struct {
	Account   *ServiceAccount
	ProjectID string
	TokenURL  string
	// SendURL overrides the FCM v1 endpoint derived from the project id.
	SendURL    string
	Title      string
	HTTPClient *http.Client
	Logger     logger.Logger
}

// Forwarder is an http.Handler accepting {record:{user_id,message,id,created_at}}.
type Forwarder struct {
	tokens  TokenStore
	client  *http.Client
	sendURL string
	title   string
	log     logger.Logger
}

// NewForwarder exchanges the service account for an OAuth client. Tokens
// are fetched lazily and reused until they expire.
func NewForwarder(cfg Config, tokens TokenStore) (*Forwarder, error) {
	if cfg.Account == nil || cfg.Account.ClientEmail == "" || cfg.Account.PrivateKey == "" {
		return nil, fmt.Errorf("notify: service account credentials are required")
	}
	if tokens == nil {
		return nil, fmt.Errorf("notify: token store is required")
	}
	projectID := cfg.ProjectID
	if projectID == "" {
		projectID = cfg.Account.ProjectID
	}
	sendURL := cfg.SendURL
	if sendURL == "" {
		if projectID == "" {
			return nil, fmt.Errorf("notify: project id is required")
		}
		sendURL = fmt.Sprintf(defaultSendURL, projectID)
	}
	tokenURL := cfg.TokenURL
	if tokenURL == "" {
		tokenURL = defaultTokenURL
	}
	base := cfg.HTTPClient
	if base == nil {
		base = &http.Client{Timeout: 10 * time.Second}
	}
	jwtCfg := &jwt.Config{
		Email:        cfg.Account.ClientEmail,
		PrivateKey:   []byte(cfg.Account.PrivateKey),
		PrivateKeyID: cfg.Account.PrivateKeyID,
		Scopes:       []string{messagingScope},
		TokenURL:     tokenURL,
	}
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
	title := cfg.Title
	if title == "" {
		title = defaultTitle
	}
	log := cfg.Logger
	if log == nil {
		log = logger.Discard()
	}
	return &Forwarder{
		tokens:  tokens,
		client:  oauth2.NewClient(ctx, jwtCfg.TokenSource(ctx)),
		sendURL: sendURL,
		title:   title,
		log:     log,
	}, nil
}

// Record is the inserted notification row.
type Record struct {
	UserID    FlexibleString `json:"user_id"`
	Message   string         `json:"message"`
	ID        FlexibleString `json:"id"`
	CreatedAt string         `json:"created_at"`
}

type webhookPayload struct {
	Record *Record `json:"record"`
}

// Response is the success body.
type Response struct {
	Success     bool            `json:"success"`
	Message     string          `json:"message"`
	FCMResponse json.RawMessage `json:"fcm_response,omitempty"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// ServeHTTP validates the webhook payload and forwards it.
func (f *Forwarder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		return
	}
	var payload webhookPayload
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body", Details: err.Error()})
		return
	}
	if payload.Record == nil || payload.Record.UserID == "" || strings.TrimSpace(payload.Record.Message) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "record.user_id and record.message are required"})
		return
	}
	resp, err := f.Send(r.Context(), *payload.Record)
	switch {
	case errors.Is(err, ErrTokenNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "device token not found for user", Details: string(payload.Record.UserID)})
	case err != nil:
		f.log.Error("push forward failed", "user_id", string(payload.Record.UserID), "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to send notification", Details: err.Error()})
	default:
		writeJSON(w, http.StatusOK, resp)
	}
}

// Send pushes one record to the user's device.
func (f *Forwarder) Send(ctx context.Context, rec Record) (Response, error) {
	token, err := f.tokens.DeviceToken(ctx, string(rec.UserID))
	if err != nil {
		return Response{}, err
	}
	data := map[string]string{}
	if rec.ID != "" {
		data["notification_id"] = string(rec.ID)
	}
	if rec.CreatedAt != "" {
		data["created_at"] = rec.CreatedAt
	}
	body, err := json.Marshal(map[string]any{
		"message": map[string]any{
			"token":        token,
			"notification": map[string]string{"title": f.title, "body": rec.Message},
			"data":         data,
		},
	})
	if err != nil {
		return Response{}, fmt.Errorf("notify: encode message: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.sendURL, bytes.NewReader(body))
	if err != nil {
		return Response{}, fmt.Errorf("notify: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	res, err := f.client.Do(req)
	if err != nil {
		return Response{}, fmt.Errorf("notify: send: %w", err)
	}
	defer res.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return Response{}, fmt.Errorf("notify: read response: %w", err)
	}
	if res.StatusCode >= 300 {
		return Response{}, fmt.Errorf("notify: fcm error %d: %s", res.StatusCode, strings.TrimSpace(string(raw)))
	}
	if !json.Valid(raw) {
		raw = nil
	}
	f.log.Info("push forwarded", "user_id", string(rec.UserID), "notification_id", string(rec.ID))
	return Response{Success: true, Message: "Notification sent successfully", FCMResponse: raw}, nil
}

// FlexibleString decodes a JSON string or number into its text form.
type FlexibleString string

// UnmarshalJSON accepts "abc", 42 or null.
func (s *FlexibleString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = FlexibleString(strings.TrimSpace(str))
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return fmt.Errorf("notify: expected string or number, got %s", string(data))
	}
	*s = FlexibleString(num.String())
	return nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
