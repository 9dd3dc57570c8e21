package queries

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/nearbytask/admin-dashboard/components/listing"
	"github.com/nearbytask/admin-dashboard/components/listing/export"
)

type payment struct {
	Payer  string
	Amount float64
	Status string
}

func newRegistry(t *testing.T) *listing.Registry {
	t.Helper()
	source := listing.DataSourceFunc[payment](func(context.Context) ([]payment, error) {
		return []payment{
			{Payer: "Jenny", Amount: 10, Status: "Completed"},
			{Payer: "Wade", Amount: 20, Status: "Pending"},
			{Payer: "Esther", Amount: 30, Status: "Completed"},
		}, nil
	})
	screen := listing.NewScreen(listing.ScreenDefinition{Code: "payments", Name: "Payments", PageSize: 2},
		listing.Config[payment]{
			Searchable: []func(payment) string{func(p payment) string { return p.Payer }},
			Filters:    map[string]listing.FilterAxis[payment]{"status": {Key: func(p payment) string { return p.Status }}},
		}, source, listing.ScreenOptions[payment]{Columns: []export.Column[payment]{
			{Name: "Payer", Extract: func(p payment) export.Value { return export.Text(p.Payer) }},
			{Name: "Amount", Extract: func(p payment) export.Value { return export.Number(p.Amount) }},
		}})
	if err := screen.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	reg := listing.NewRegistry()
	if err := reg.Register(screen); err != nil {
		t.Fatalf("register: %v", err)
	}
	return reg
}

func TestListPageQueryRestoresSavedState(t *testing.T) {
	prefs := listing.NewInMemoryPreferenceStore()
	viewer := listing.ViewerContext{UserID: "admin-1"}
	query := NewListPageQuery(newRegistry(t), prefs)

	view, err := query.Query(context.Background(), ListPageInput{
		Viewer: viewer,
		Screen: "payments",
		State:  listing.ListState{Filters: map[string]string{"status": "Completed"}},
	})
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if view.TotalItems != 2 {
		t.Fatalf("expected 2 filtered items, got %d", view.TotalItems)
	}

	view, err = query.Query(context.Background(), ListPageInput{Viewer: viewer, Screen: "payments"})
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if view.State.Filters["status"] != "Completed" {
		t.Fatalf("expected saved filter to be restored, got %+v", view.State)
	}

	if _, err := query.Query(context.Background(), ListPageInput{Screen: "nope"}); !errors.Is(err, listing.ErrUnknownScreen) {
		t.Fatalf("expected unknown screen error, got %v", err)
	}
}

func TestExportQueryProducesArtifact(t *testing.T) {
	query := NewExportQuery(newRegistry(t))
	artifact, err := query.Query(context.Background(), ExportInput{
		Screen: "payments",
		State:  listing.ListState{Search: "wade"},
		Format: export.FormatCSV,
	})
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if artifact.Filename != "Payments.csv" || artifact.ContentType != "text/csv; charset=utf-8" {
		t.Fatalf("unexpected artifact metadata %+v", artifact)
	}
	if artifact.Rows != 1 || !bytes.Contains(artifact.Body, []byte(`"Wade",20`)) {
		t.Fatalf("unexpected body %q", artifact.Body)
	}

	pdf, err := query.Query(context.Background(), ExportInput{Screen: "payments", Format: export.FormatPDF})
	if err != nil {
		t.Fatalf("pdf export returned error: %v", err)
	}
	if !bytes.HasPrefix(pdf.Body, []byte("%PDF")) || pdf.Rows != 3 {
		t.Fatalf("unexpected pdf artifact: rows=%d", pdf.Rows)
	}
}
