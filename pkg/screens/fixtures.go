package screens

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/nearbytask/admin-dashboard/components/listing"
	"github.com/nearbytask/admin-dashboard/pkg/datasource"
	"github.com/nearbytask/admin-dashboard/pkg/records"
)

// Fixtures is an in-memory stand-in for the backend, used by the demo app
// and tests. Do applies moderation calls to the fixture set.
type Fixtures struct {
	mu            sync.Mutex
	Users         *datasource.MockSource[records.User]
	Disputes      *datasource.MockSource[records.Dispute]
	TaskTaken     *datasource.MockSource[records.TaskTaken]
	Feedback      *datasource.MockSource[records.Feedback]
	Logs          *datasource.MockSource[records.LogEntry]
	Payments      *datasource.MockSource[records.Payment]
	Complaints    *datasource.MockSource[records.Complaint]
	Conversations *datasource.MockSource[records.Conversation]

	users      []records.User
	disputes   []records.Dispute
	complaints []records.Complaint
	calls      []string
}

var fixtureEpoch = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

func hoursAgo(n int) time.Time { return fixtureEpoch.Add(-time.Duration(n) * time.Hour) }

// NewFixtures seeds every screen with sample records.
func NewFixtures() *Fixtures {
	ann := &records.Party{ID: 1, Name: "Ann Lee", Email: "ann@example.com"}
	bo := &records.Party{ID: 2, Name: "Bo Mensah", Email: "bo@example.com"}
	cy := &records.Party{ID: 3, Name: "Cy Park", Email: "cy@example.com"}

	users := []records.User{
		{ID: 1, Name: "Ann Lee", Email: "ann@example.com", Phone: "555-0101", Role: "poster", AccountStatus: "active", Online: "true", Profile: &records.UserProfile{City: "Accra"}, CreatedAt: hoursAgo(1)},
		{ID: 2, Name: "Bo Mensah", Email: "bo@example.com", Phone: "555-0102", Role: "tasker", AccountStatus: "active", Online: "FALSE", CreatedAt: hoursAgo(30)},
		{ID: 3, Name: "Cy Park", Email: "cy@example.com", Role: "tasker", AccountStatus: "suspended", Online: "false", CreatedAt: hoursAgo(72)},
		{ID: 4, Name: "Dee Okafor", Email: "dee@example.com", Phone: "555-0104", Role: "admin", AccountStatus: "active", Online: "True", CreatedAt: hoursAgo(200)},
	}
	taskID := int64(4)
	disputes := []records.Dispute{
		{ID: 1, Title: "Work not completed", Status: "Open", Priority: "high", RaisedBy: ann, Against: bo, TaskID: &taskID, CreatedAt: hoursAgo(2)},
		{ID: 2, Title: "Late payment", Status: "Resolved", Priority: "low", RaisedBy: bo, Against: ann, CreatedAt: hoursAgo(50)},
		{ID: 3, Title: "Damaged item", Status: "Open", Priority: "medium", RaisedBy: ann, Against: cy, CreatedAt: hoursAgo(90)},
	}
	statuses := []string{"Cancelled", "Completed", "Completed", "Cancelled", "Ongoing", "Ongoing", "Ongoing", "Ongoing", "Ongoing"}
	tasks := make([]records.TaskTaken, len(statuses))
	for i, status := range statuses {
		tasker := bo
		if i%2 == 1 {
			tasker = cy
		}
		tasks[i] = records.TaskTaken{
			ID:        int64(i + 1),
			Title:     fmt.Sprintf("Task %d", i+1),
			Status:    status,
			Price:     float64(100 - i*10),
			Tasker:    tasker,
			Poster:    ann,
			CreatedAt: hoursAgo(i),
		}
	}
	complaints := []records.Complaint{
		{ID: 1, Subject: "Abusive message", Reporter: ann, Status: "Pending", Description: "Received insults, in chat", CreatedAt: hoursAgo(3)},
		{ID: 2, Subject: "Fake listing", Reporter: cy, Status: "Resolved", CreatedAt: hoursAgo(40)},
	}
	f := &Fixtures{
		users:      users,
		disputes:   disputes,
		complaints: complaints,
		Users:      datasource.NewMockSource(users...),
		Disputes:   datasource.NewMockSource(disputes...),
		TaskTaken:  datasource.NewMockSource(tasks...),
		Feedback: datasource.NewMockSource(
			records.Feedback{ID: 1, User: ann, Rating: 5, Comment: "Great tasker", CreatedAt: hoursAgo(4)},
			records.Feedback{ID: 2, User: bo, Rating: 3, Comment: "Slow app", CreatedAt: hoursAgo(20)},
			records.Feedback{ID: 3, User: cy, Rating: 5, CreatedAt: hoursAgo(60)},
		),
		Logs: datasource.NewMockSource(
			records.LogEntry{ID: 1, Level: "info", Action: "user.login", Actor: "ann@example.com", CreatedAt: hoursAgo(1)},
			records.LogEntry{ID: 2, Level: "warn", Action: "payment.retry", Actor: "system", Details: "gateway timeout", CreatedAt: hoursAgo(5)},
			records.LogEntry{ID: 3, Level: "error", Action: "payment.failed", Actor: "system", Details: "card declined", CreatedAt: hoursAgo(6)},
		),
		Payments: datasource.NewMockSource(
			records.Payment{ID: 1, Payer: ann, Payee: bo, Amount: 90, Currency: "USD", Method: "card", Status: "paid", Reference: "PAY-001", CreatedAt: hoursAgo(2)},
			records.Payment{ID: 2, Payer: ann, Payee: cy, Amount: 45.5, Currency: "USD", Method: "wallet", Status: "pending", Reference: "PAY-002", CreatedAt: hoursAgo(26)},
			records.Payment{ID: 3, Payer: bo, Payee: cy, Amount: 120, Currency: "USD", Method: "card", Status: "refunded", Reference: "PAY-003", CreatedAt: hoursAgo(80)},
		),
		Complaints: datasource.NewMockSource(complaints...),
		Conversations: datasource.NewMockSource(
			records.Conversation{ID: 1, Participants: []records.Party{*ann, *bo}, LastMessage: "See you at 5", MessageCount: 12, Flagged: "false", UpdatedAt: hoursAgo(1)},
			records.Conversation{ID: 2, Participants: []records.Party{*ann, *cy}, LastMessage: "Pay outside the app", MessageCount: 4, Flagged: "true", UpdatedAt: hoursAgo(8)},
		),
	}
	return f
}

// Sources exposes the fixtures as screen sources.
func (f *Fixtures) Sources() Sources {
	return Sources{
		Users:         f.Users,
		Disputes:      f.Disputes,
		TaskTaken:     f.TaskTaken,
		Feedback:      f.Feedback,
		Logs:          f.Logs,
		Payments:      f.Payments,
		Complaints:    f.Complaints,
		Conversations: f.Conversations,
	}
}

// Calls returns the moderation calls seen so far as "METHOD path".
func (f *Fixtures) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// Do applies a moderation call in the shape produced by
// commands.ModerationRoute. Unknown records yield a 404-classified error.
func (f *Fixtures) Do(_ context.Context, method, path string, _, _ any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, method+" "+path)

	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) < 3 {
		return fmt.Errorf("screens: unsupported fixture path %q", path)
	}
	collection, rawID := parts[1], parts[2]
	action := "delete"
	if method != http.MethodDelete && len(parts) > 3 {
		action = parts[3]
	}
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return fmt.Errorf("screens: invalid fixture id %q", rawID)
	}

	switch collection {
	case "users":
		idx := slices.IndexFunc(f.users, func(u records.User) bool { return u.ID == id })
		if idx < 0 {
			return errNotFound(path)
		}
		switch action {
		case "delete":
			f.users = slices.Delete(f.users, idx, idx+1)
		case "ban":
			f.users[idx].AccountStatus = "banned"
		}
		f.Users.Set(f.users...)
	case "disputes":
		idx := slices.IndexFunc(f.disputes, func(d records.Dispute) bool { return d.ID == id })
		if idx < 0 {
			return errNotFound(path)
		}
		switch action {
		case "delete":
			f.disputes = slices.Delete(f.disputes, idx, idx+1)
		case "resolve":
			f.disputes[idx].Status = "Resolved"
		}
		f.Disputes.Set(f.disputes...)
	case "complaints":
		idx := slices.IndexFunc(f.complaints, func(c records.Complaint) bool { return c.ID == id })
		if idx < 0 {
			return errNotFound(path)
		}
		switch action {
		case "delete":
			f.complaints = slices.Delete(f.complaints, idx, idx+1)
		case "resolve":
			f.complaints[idx].Status = "Resolved"
		}
		f.Complaints.Set(f.complaints...)
	default:
		return fmt.Errorf("screens: fixtures do not support moderating %s", collection)
	}
	return nil
}

func errNotFound(path string) error {
	return &listing.Error{
		Kind:   listing.Classify(http.StatusNotFound),
		Op:     "fixtures " + path,
		Status: http.StatusNotFound,
		Err:    fmt.Errorf("record not found"),
	}
}
