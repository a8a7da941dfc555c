package describe

import (
	"context"

	"github.com/kailas-cloud/recodex/internal/transport/openai"
)

// Completer runs one chat completion.
type Completer interface {
	Complete(ctx context.Context, r openai.Request) (string, error)
}
