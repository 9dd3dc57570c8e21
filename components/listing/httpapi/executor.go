package httpapi

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	"github.com/nearbytask/admin-dashboard/components/listing"
	"github.com/nearbytask/admin-dashboard/components/listing/commands"
	"github.com/nearbytask/admin-dashboard/components/listing/queries"
)

// Executor is the transport-neutral surface shared by net/http and go-router.
type Executor interface {
	List(ctx context.Context, input queries.ListPageInput) (listing.PageView, error)
	Export(ctx context.Context, input queries.ExportInput) (queries.ExportArtifact, error)
	Moderate(ctx context.Context, input commands.ModerateInput) error
	Refresh(ctx context.Context, input commands.RefreshScreenInput) error
	Preferences(ctx context.Context, input commands.SavePreferencesInput) error
}

// CommandExecutor adapts go-command handlers into an Executor.
type CommandExecutor struct {
	ListQuery      gocommand.Querier[queries.ListPageInput, listing.PageView]
	ExportQuery    gocommand.Querier[queries.ExportInput, queries.ExportArtifact]
	ModerateCmd    gocommand.Commander[commands.ModerateInput]
	RefreshCmd     gocommand.Commander[commands.RefreshScreenInput]
	PreferencesCmd gocommand.Commander[commands.SavePreferencesInput]
}

var _ Executor = (*CommandExecutor)(nil)

var errNotConfigured = errors.New("httpapi: handler not configured")

func (e *CommandExecutor) List(ctx context.Context, input queries.ListPageInput) (listing.PageView, error) {
	if e.ListQuery == nil {
		return listing.PageView{}, errNotConfigured
	}
	return e.ListQuery.Query(ctx, input)
}

func (e *CommandExecutor) Export(ctx context.Context, input queries.ExportInput) (queries.ExportArtifact, error) {
	if e.ExportQuery == nil {
		return queries.ExportArtifact{}, errNotConfigured
	}
	return e.ExportQuery.Query(ctx, input)
}

func (e *CommandExecutor) Moderate(ctx context.Context, input commands.ModerateInput) error {
	if e.ModerateCmd == nil {
		return errNotConfigured
	}
	return e.ModerateCmd.Execute(ctx, input)
}

func (e *CommandExecutor) Refresh(ctx context.Context, input commands.RefreshScreenInput) error {
	if e.RefreshCmd == nil {
		return errNotConfigured
	}
	return e.RefreshCmd.Execute(ctx, input)
}

func (e *CommandExecutor) Preferences(ctx context.Context, input commands.SavePreferencesInput) error {
	if e.PreferencesCmd == nil {
		return errNotConfigured
	}
	return e.PreferencesCmd.Execute(ctx, input)
}
