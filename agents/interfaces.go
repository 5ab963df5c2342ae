package agents

import (
	"context"
)

// Assistant is the conversational surface the server talks to.
type Assistant interface {
	Answer(ctx context.Context, query string) (*Answer, error)
}
