package repository

import (
	"context"
	"os"

	"github.com/rs/zerolog"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

// Doer is the slice of the GraphQL client the repositories need.
type Doer interface {
	Do(ctx context.Context, token, query string, vars map[string]any, out any) error
}
