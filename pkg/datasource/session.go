package datasource

import (
	"context"
	"errors"
)

// ErrNoSession is returned when no bearer token is available.
var ErrNoSession = errors.New("datasource: no session token")

// SessionProvider supplies the bearer token for backend calls.
type SessionProvider interface {
	Token(ctx context.Context) (string, error)
}

// SessionFunc adapts a function into a SessionProvider.
type SessionFunc func(ctx context.Context) (string, error)

// Token calls f(ctx).
func (f SessionFunc) Token(ctx context.Context) (string, error) { return f(ctx) }

// StaticSession always returns the same token.
type StaticSession string

// Token returns the token, or ErrNoSession when it is empty.
func (s StaticSession) Token(context.Context) (string, error) {
	if s == "" {
		return "", ErrNoSession
	}
	return string(s), nil
}
