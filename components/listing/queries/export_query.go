package queries

import (
	"bytes"
	"context"
	"time"

	gocommand "github.com/goliatone/go-command"

	"github.com/nearbytask/admin-dashboard/components/listing"
	"github.com/nearbytask/admin-dashboard/components/listing/export"
)

// ExportInput describes an export request.
type ExportInput struct {
	Screen string
	State  listing.ListState
	Format export.Format
	Scope  listing.ExportScope
}

// ExportArtifact is a finished export held in memory.
type ExportArtifact struct {
	Filename    string
	ContentType string
	Rows        int
	Body        []byte
}

// ExportQuery produces CSV or PDF artifacts for a screen.
type ExportQuery struct {
	screens ScreenLookup
	now     func() time.Time
}

// NewExportQuery builds the query.
func NewExportQuery(screens ScreenLookup) *ExportQuery {
	return &ExportQuery{screens: screens, now: time.Now}
}

var _ gocommand.Querier[ExportInput, ExportArtifact] = (*ExportQuery)(nil)

// Query runs the export.
func (q *ExportQuery) Query(ctx context.Context, input ExportInput) (ExportArtifact, error) {
	screen, err := q.screens.Lookup(input.Screen)
	if err != nil {
		return ExportArtifact{}, err
	}
	var buf bytes.Buffer
	result, err := screen.Export(ctx, listing.ExportRequest{
		State:       input.State,
		Format:      input.Format,
		Scope:       input.Scope,
		GeneratedAt: q.now(),
	}, &buf)
	if err != nil {
		return ExportArtifact{}, err
	}
	return ExportArtifact{
		Filename:    result.Filename,
		ContentType: result.ContentType,
		Rows:        result.Rows,
		Body:        buf.Bytes(),
	}, nil
}
