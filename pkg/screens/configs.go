package screens

import (
	"cmp"
	"strconv"
	"strings"
	"time"

	"github.com/nearbytask/admin-dashboard/components/listing"
	"github.com/nearbytask/admin-dashboard/components/listing/export"
	"github.com/nearbytask/admin-dashboard/pkg/records"
)

const dateLayout = "2006-01-02"

func newestFirst(a, b time.Time) int { return b.Compare(a) }

func date(t time.Time) export.Value {
	if t.IsZero() {
		return export.Text("")
	}
	return export.Text(t.Format(dateLayout))
}

func party(p *records.Party) export.Value { return export.Text(records.NameOf(p)) }

// UsersConfig lists platform accounts.
func UsersConfig() listing.Config[records.User] {
	return listing.Config[records.User]{
		Searchable: []func(records.User) string{
			func(u records.User) string { return u.Name },
			func(u records.User) string { return u.Email },
			func(u records.User) string { return u.Phone },
		},
		Filters: map[string]listing.FilterAxis[records.User]{
			"role":           {Label: "Role", Key: func(u records.User) string { return u.Role }},
			"account_status": {Label: "Status", Key: func(u records.User) string { return u.AccountStatus }},
			"online":         {Label: "Online", Key: func(u records.User) string { return string(u.Online) }, CaseInsensitive: true},
		},
		Sorts: map[string]listing.Comparator[records.User]{
			"name":    func(a, b records.User) int { return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)) },
			"created": func(a, b records.User) int { return a.CreatedAt.Compare(b.CreatedAt) },
		},
		NaturalSort: func(a, b records.User) int { return newestFirst(a.CreatedAt, b.CreatedAt) },
	}
}

// UserColumns is the users export column set.
var UserColumns = []export.Column[records.User]{
	{Name: "ID", Extract: func(u records.User) export.Value { return export.Number(float64(u.ID)) }},
	{Name: "Name", Extract: func(u records.User) export.Value { return export.Text(u.Name) }},
	{Name: "Email", Extract: func(u records.User) export.Value { return export.Text(u.Email) }},
	{Name: "Phone", Extract: func(u records.User) export.Value { return export.Text(u.Phone) }},
	{Name: "Role", Extract: func(u records.User) export.Value { return export.Text(u.Role) }},
	{Name: "Status", Extract: func(u records.User) export.Value { return export.Text(u.AccountStatus) }},
	{Name: "Online", Extract: func(u records.User) export.Value { return export.Text(strconv.FormatBool(u.Online.Bool())) }},
	{Name: "City", Extract: func(u records.User) export.Value {
		if u.Profile == nil {
			return export.Text("")
		}
		return export.Text(u.Profile.City)
	}},
	{Name: "Joined", Extract: func(u records.User) export.Value { return date(u.CreatedAt) }},
}

// DisputesConfig lists disputes.
func DisputesConfig() listing.Config[records.Dispute] {
	return listing.Config[records.Dispute]{
		Searchable: []func(records.Dispute) string{
			func(d records.Dispute) string { return d.Title },
			func(d records.Dispute) string { return records.NameOf(d.RaisedBy) },
			func(d records.Dispute) string { return records.NameOf(d.Against) },
		},
		Filters: map[string]listing.FilterAxis[records.Dispute]{
			"status":   {Label: "Status", Key: func(d records.Dispute) string { return d.Status }},
			"priority": {Label: "Priority", Key: func(d records.Dispute) string { return d.Priority }, CaseInsensitive: true},
		},
		Sorts: map[string]listing.Comparator[records.Dispute]{
			"created": func(a, b records.Dispute) int { return a.CreatedAt.Compare(b.CreatedAt) },
			"status":  func(a, b records.Dispute) int { return strings.Compare(a.Status, b.Status) },
		},
		NaturalSort: func(a, b records.Dispute) int { return newestFirst(a.CreatedAt, b.CreatedAt) },
	}
}

// DisputeColumns is the disputes export column set.
var DisputeColumns = []export.Column[records.Dispute]{
	{Name: "ID", Extract: func(d records.Dispute) export.Value { return export.Number(float64(d.ID)) }},
	{Name: "Title", Extract: func(d records.Dispute) export.Value { return export.Text(d.Title) }},
	{Name: "Raised By", Extract: func(d records.Dispute) export.Value { return party(d.RaisedBy) }},
	{Name: "Against", Extract: func(d records.Dispute) export.Value { return party(d.Against) }},
	{Name: "Status", Extract: func(d records.Dispute) export.Value { return export.Text(d.Status) }},
	{Name: "Priority", Extract: func(d records.Dispute) export.Value { return export.Text(d.Priority) }},
	{Name: "Created", Extract: func(d records.Dispute) export.Value { return date(d.CreatedAt) }},
}

// TaskTakenConfig lists tasks accepted by taskers.
func TaskTakenConfig() listing.Config[records.TaskTaken] {
	return listing.Config[records.TaskTaken]{
		Searchable: []func(records.TaskTaken) string{
			func(t records.TaskTaken) string { return t.Title },
			func(t records.TaskTaken) string { return records.NameOf(t.Tasker) },
			func(t records.TaskTaken) string { return records.NameOf(t.Poster) },
		},
		Filters: map[string]listing.FilterAxis[records.TaskTaken]{
			"status": {Label: "Status", Key: func(t records.TaskTaken) string { return t.Status }},
		},
		Sorts: map[string]listing.Comparator[records.TaskTaken]{
			"price":   func(a, b records.TaskTaken) int { return cmp.Compare(a.Price, b.Price) },
			"created": func(a, b records.TaskTaken) int { return a.CreatedAt.Compare(b.CreatedAt) },
		},
		NaturalSort: func(a, b records.TaskTaken) int { return newestFirst(a.CreatedAt, b.CreatedAt) },
	}
}

// TaskTakenColumns is the task-taken export column set.
var TaskTakenColumns = []export.Column[records.TaskTaken]{
	{Name: "ID", Extract: func(t records.TaskTaken) export.Value { return export.Number(float64(t.ID)) }},
	{Name: "Task", Extract: func(t records.TaskTaken) export.Value { return export.Text(t.Title) }},
	{Name: "Tasker", Extract: func(t records.TaskTaken) export.Value { return party(t.Tasker) }},
	{Name: "Poster", Extract: func(t records.TaskTaken) export.Value { return party(t.Poster) }},
	{Name: "Status", Extract: func(t records.TaskTaken) export.Value { return export.Text(t.Status) }},
	{Name: "Price", Extract: func(t records.TaskTaken) export.Value { return export.Number(t.Price) }},
	{Name: "Created", Extract: func(t records.TaskTaken) export.Value { return date(t.CreatedAt) }},
}

// FeedbackConfig lists user feedback.
func FeedbackConfig() listing.Config[records.Feedback] {
	return listing.Config[records.Feedback]{
		Searchable: []func(records.Feedback) string{
			func(f records.Feedback) string { return records.NameOf(f.User) },
			func(f records.Feedback) string { return f.Comment },
		},
		Filters: map[string]listing.FilterAxis[records.Feedback]{
			"rating": {Label: "Rating", Key: func(f records.Feedback) string { return strconv.Itoa(f.Rating) }},
		},
		Sorts: map[string]listing.Comparator[records.Feedback]{
			"rating":  func(a, b records.Feedback) int { return cmp.Compare(a.Rating, b.Rating) },
			"created": func(a, b records.Feedback) int { return a.CreatedAt.Compare(b.CreatedAt) },
		},
		NaturalSort: func(a, b records.Feedback) int { return newestFirst(a.CreatedAt, b.CreatedAt) },
	}
}

// FeedbackColumns is the feedback export column set.
var FeedbackColumns = []export.Column[records.Feedback]{
	{Name: "ID", Extract: func(f records.Feedback) export.Value { return export.Number(float64(f.ID)) }},
	{Name: "User", Extract: func(f records.Feedback) export.Value { return party(f.User) }},
	{Name: "Rating", Extract: func(f records.Feedback) export.Value { return export.Int(f.Rating) }},
	{Name: "Comment", Extract: func(f records.Feedback) export.Value { return export.Text(f.Comment) }},
	{Name: "Created", Extract: func(f records.Feedback) export.Value { return date(f.CreatedAt) }},
}

// LogsConfig lists audit log entries.
func LogsConfig() listing.Config[records.LogEntry] {
	return listing.Config[records.LogEntry]{
		Searchable: []func(records.LogEntry) string{
			func(l records.LogEntry) string { return l.Action },
			func(l records.LogEntry) string { return l.Actor },
			func(l records.LogEntry) string { return l.Details },
		},
		Filters: map[string]listing.FilterAxis[records.LogEntry]{
			"level": {Label: "Level", Key: func(l records.LogEntry) string { return l.Level }, CaseInsensitive: true},
		},
		Sorts: map[string]listing.Comparator[records.LogEntry]{
			"created": func(a, b records.LogEntry) int { return a.CreatedAt.Compare(b.CreatedAt) },
		},
		NaturalSort: func(a, b records.LogEntry) int { return newestFirst(a.CreatedAt, b.CreatedAt) },
	}
}

// LogColumns is the logs export column set.
var LogColumns = []export.Column[records.LogEntry]{
	{Name: "ID", Extract: func(l records.LogEntry) export.Value { return export.Number(float64(l.ID)) }},
	{Name: "Level", Extract: func(l records.LogEntry) export.Value { return export.Text(l.Level) }},
	{Name: "Action", Extract: func(l records.LogEntry) export.Value { return export.Text(l.Action) }},
	{Name: "Actor", Extract: func(l records.LogEntry) export.Value { return export.Text(l.Actor) }},
	{Name: "Details", Extract: func(l records.LogEntry) export.Value { return export.Text(l.Details) }},
	{Name: "Time", Extract: func(l records.LogEntry) export.Value {
		if l.CreatedAt.IsZero() {
			return export.Text("")
		}
		return export.Text(l.CreatedAt.Format(time.DateTime))
	}},
}

// PaymentsConfig lists payments.
func PaymentsConfig() listing.Config[records.Payment] {
	return listing.Config[records.Payment]{
		Searchable: []func(records.Payment) string{
			func(p records.Payment) string { return records.NameOf(p.Payer) },
			func(p records.Payment) string { return records.NameOf(p.Payee) },
			func(p records.Payment) string { return p.Reference },
		},
		Filters: map[string]listing.FilterAxis[records.Payment]{
			"status": {Label: "Status", Key: func(p records.Payment) string { return p.Status }},
			"method": {Label: "Method", Key: func(p records.Payment) string { return p.Method }, CaseInsensitive: true},
		},
		Sorts: map[string]listing.Comparator[records.Payment]{
			"amount":  func(a, b records.Payment) int { return cmp.Compare(a.Amount, b.Amount) },
			"created": func(a, b records.Payment) int { return a.CreatedAt.Compare(b.CreatedAt) },
		},
		NaturalSort: func(a, b records.Payment) int { return newestFirst(a.CreatedAt, b.CreatedAt) },
	}
}

// PaymentColumns is the payments export column set.
var PaymentColumns = []export.Column[records.Payment]{
	{Name: "ID", Extract: func(p records.Payment) export.Value { return export.Number(float64(p.ID)) }},
	{Name: "Payer", Extract: func(p records.Payment) export.Value { return party(p.Payer) }},
	{Name: "Payee", Extract: func(p records.Payment) export.Value { return party(p.Payee) }},
	{Name: "Amount", Extract: func(p records.Payment) export.Value { return export.Number(p.Amount) }},
	{Name: "Currency", Extract: func(p records.Payment) export.Value { return export.Text(p.Currency) }},
	{Name: "Method", Extract: func(p records.Payment) export.Value { return export.Text(p.Method) }},
	{Name: "Status", Extract: func(p records.Payment) export.Value { return export.Text(p.Status) }},
	{Name: "Reference", Extract: func(p records.Payment) export.Value { return export.Text(p.Reference) }},
	{Name: "Date", Extract: func(p records.Payment) export.Value { return date(p.CreatedAt) }},
}

// ComplaintsConfig lists complaints.
func ComplaintsConfig() listing.Config[records.Complaint] {
	return listing.Config[records.Complaint]{
		Searchable: []func(records.Complaint) string{
			func(c records.Complaint) string { return c.Subject },
			func(c records.Complaint) string { return records.NameOf(c.Reporter) },
		},
		Filters: map[string]listing.FilterAxis[records.Complaint]{
			"status": {Label: "Status", Key: func(c records.Complaint) string { return c.Status }},
		},
		Sorts: map[string]listing.Comparator[records.Complaint]{
			"created": func(a, b records.Complaint) int { return a.CreatedAt.Compare(b.CreatedAt) },
		},
		NaturalSort: func(a, b records.Complaint) int { return newestFirst(a.CreatedAt, b.CreatedAt) },
	}
}

// ComplaintColumns is the complaints export column set.
var ComplaintColumns = []export.Column[records.Complaint]{
	{Name: "ID", Extract: func(c records.Complaint) export.Value { return export.Number(float64(c.ID)) }},
	{Name: "Subject", Extract: func(c records.Complaint) export.Value { return export.Text(c.Subject) }},
	{Name: "Reporter", Extract: func(c records.Complaint) export.Value { return party(c.Reporter) }},
	{Name: "Status", Extract: func(c records.Complaint) export.Value { return export.Text(c.Status) }},
	{Name: "Description", Extract: func(c records.Complaint) export.Value { return export.Text(c.Description) }},
	{Name: "Created", Extract: func(c records.Complaint) export.Value { return date(c.CreatedAt) }},
}

// ConversationsConfig lists message threads.
func ConversationsConfig() listing.Config[records.Conversation] {
	return listing.Config[records.Conversation]{
		Searchable: []func(records.Conversation) string{
			func(c records.Conversation) string { return c.ParticipantNames() },
			func(c records.Conversation) string { return c.LastMessage },
		},
		Filters: map[string]listing.FilterAxis[records.Conversation]{
			"flagged": {Label: "Flagged", Key: func(c records.Conversation) string { return string(c.Flagged) }, CaseInsensitive: true},
		},
		Sorts: map[string]listing.Comparator[records.Conversation]{
			"updated": func(a, b records.Conversation) int { return a.UpdatedAt.Compare(b.UpdatedAt) },
		},
		NaturalSort: func(a, b records.Conversation) int { return newestFirst(a.UpdatedAt, b.UpdatedAt) },
	}
}

// ConversationColumns is the user communication export column set.
var ConversationColumns = []export.Column[records.Conversation]{
	{Name: "ID", Extract: func(c records.Conversation) export.Value { return export.Number(float64(c.ID)) }},
	{Name: "Participants", Extract: func(c records.Conversation) export.Value { return export.Text(c.ParticipantNames()) }},
	{Name: "Last Message", Extract: func(c records.Conversation) export.Value { return export.Text(c.LastMessage) }},
	{Name: "Messages", Extract: func(c records.Conversation) export.Value { return export.Int(c.MessageCount) }},
	{Name: "Flagged", Extract: func(c records.Conversation) export.Value { return export.Text(strconv.FormatBool(c.Flagged.Bool())) }},
	{Name: "Updated", Extract: func(c records.Conversation) export.Value { return date(c.UpdatedAt) }},
}
