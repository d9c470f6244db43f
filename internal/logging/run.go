package logging

import (
	"context"

	"github.com/google/uuid"
)

// NewRunID returns a fresh identifier for one conversion run.
func NewRunID() string {
	return uuid.NewString()
}

// StartRun attaches a new run ID to ctx unless one is present.
func StartRun(ctx context.Context) context.Context {
	if GetRunID(ctx) != "" {
		return ctx
	}
	return WithRunID(ctx, NewRunID())
}
