package listing

import "context"

// ActivityContext identifies who performed a moderation action. ActorID is
// the acting admin; UserID is the account the action was taken on behalf of,
// which for the admin panel is normally the same person.
type ActivityContext struct {
	ActorID  string
	UserID   string
	TenantID string
}

// IsZero reports whether no identity is set.
func (a ActivityContext) IsZero() bool {
	return a.ActorID == "" && a.UserID == "" && a.TenantID == ""
}

type activityKey struct{}

// ContextWithActivity attaches meta to ctx.
func ContextWithActivity(ctx context.Context, meta ActivityContext) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, activityKey{}, meta)
}

// ContextWithViewer attaches the viewer as the acting admin unless ctx
// already carries an identity from upstream middleware.
func ContextWithViewer(ctx context.Context, viewer ViewerContext) context.Context {
	if !ActivityFrom(ctx).IsZero() || viewer.UserID == "" {
		return ctx
	}
	return ContextWithActivity(ctx, ActivityContext{ActorID: viewer.UserID, UserID: viewer.UserID})
}

// ActivityFrom returns the identity stored on ctx or the zero value.
func ActivityFrom(ctx context.Context) ActivityContext {
	if ctx == nil {
		return ActivityContext{}
	}
	meta, _ := ctx.Value(activityKey{}).(ActivityContext)
	return meta
}
