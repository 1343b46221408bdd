package ports

import (
	"context"

	"github.com/entregas/delivery-marketplace/internal/core/domain"
)

// AuditRepository persists the transition audit trail.
type AuditRepository interface {
	InsertTransition(ctx context.Context, ev *domain.TransitionEvent) error
	FindByPackage(ctx context.Context, packageID string) ([]*domain.TransitionEvent, error)
}

// AuditSink receives fire-and-forget transition records. Implementations must
// never block the transition path.
type AuditSink interface {
	Record(ev domain.TransitionEvent)
}
