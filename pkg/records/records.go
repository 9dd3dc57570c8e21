// Package records defines the typed shapes returned by the NearByTask admin
// API. Optional nested values are pointers; timestamps are RFC 3339.
package records

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Flag is a boolean the backend sends either as a JSON bool or as a string.
// It is kept as its string form so it can serve as a filter value.
type Flag string

// UnmarshalJSON accepts true, "true", "TRUE", null, ...
func (f *Flag) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*f = ""
	case bytes.Equal(data, []byte("true")), bytes.Equal(data, []byte("false")):
		*f = Flag(data)
	default:
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("records: invalid flag %s", string(data))
		}
		*f = Flag(strings.TrimSpace(s))
	}
	return nil
}

// Bool reports the flag value; anything but "true" (any case) is false.
func (f Flag) Bool() bool {
	b, err := strconv.ParseBool(strings.ToLower(string(f)))
	return err == nil && b
}

// Party is a user reference embedded in other records.
type Party struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// NameOf returns the party name, or "" for a missing party.
func NameOf(p *Party) string {
	if p == nil {
		return ""
	}
	return p.Name
}

// UserProfile carries optional profile details.
type UserProfile struct {
	City   string `json:"city,omitempty"`
	Avatar string `json:"avatar,omitempty"`
}

// User is a platform account.
type User struct {
	ID            int64        `json:"id"`
	Name          string       `json:"name"`
	Email         string       `json:"email"`
	Phone         string       `json:"phone,omitempty"`
	Role          string       `json:"role"`
	AccountStatus string       `json:"account_status"`
	Online        Flag         `json:"is_online"`
	Profile       *UserProfile `json:"profile,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
}

// Dispute is raised by one party of a task against another.
type Dispute struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Status      string    `json:"status"`
	Priority    string    `json:"priority,omitempty"`
	RaisedBy    *Party    `json:"raised_by,omitempty"`
	Against     *Party    `json:"against,omitempty"`
	TaskID      *int64    `json:"task_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// TaskTaken is a task accepted by a tasker.
type TaskTaken struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Status    string    `json:"status"`
	Price     float64   `json:"price"`
	Tasker    *Party    `json:"tasker,omitempty"`
	Poster    *Party    `json:"poster,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Feedback is a rating left by a user.
type Feedback struct {
	ID        int64     `json:"id"`
	User      *Party    `json:"user,omitempty"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// LogEntry is an audit log line.
type LogEntry struct {
	ID        int64     `json:"id"`
	Level     string    `json:"level"`
	Action    string    `json:"action"`
	Actor     string    `json:"actor,omitempty"`
	Details   string    `json:"details,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Payment moves money between a poster and a tasker.
type Payment struct {
	ID        int64     `json:"id"`
	Payer     *Party    `json:"payer,omitempty"`
	Payee     *Party    `json:"payee,omitempty"`
	Amount    float64   `json:"amount"`
	Currency  string    `json:"currency,omitempty"`
	Method    string    `json:"method"`
	Status    string    `json:"status"`
	Reference string    `json:"reference,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Complaint is a report filed against content or a user.
type Complaint struct {
	ID          int64     `json:"id"`
	Subject     string    `json:"subject"`
	Description string    `json:"description,omitempty"`
	Reporter    *Party    `json:"reporter,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// Conversation is a message thread between users.
type Conversation struct {
	ID           int64     `json:"id"`
	Participants []Party   `json:"participants"`
	LastMessage  string    `json:"last_message,omitempty"`
	MessageCount int       `json:"message_count"`
	Flagged      Flag      `json:"flagged"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ParticipantNames joins participant names with ", ".
func (c Conversation) ParticipantNames() string {
	names := make([]string, 0, len(c.Participants))
	for _, p := range c.Participants {
		names = append(names, p.Name)
	}
	return strings.Join(names, ", ")
}
