package feedback

import (
	"context"
	"errors"

	"tutor/ai/internal/models"
)

// ErrContextNotFound is returned for unknown or expired request ids.
var ErrContextNotFound = errors.New("request context not found or expired")

// ContextStore keeps reply contexts until the learner rates them.
type ContextStore interface {
	Set(ctx context.Context, rc *models.RequestContext) error
	Get(ctx context.Context, requestID string) (*models.RequestContext, error)
	Delete(ctx context.Context, requestID string) error
	Size(ctx context.Context) (int, error)
}
