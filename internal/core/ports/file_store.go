package ports

import "context"

// FileStore persists uploaded attachments (package and profile images).
// The core never interprets file bytes; it only stores and references them.
type FileStore interface {
	// Store writes data and returns the reference under which it was stored.
	Store(ctx context.Context, data []byte, suggestedName string) (string, error)
	// Resolve maps a stored reference to a servable filesystem path.
	// Returns domain.ErrImageNotFound for unknown references.
	Resolve(ctx context.Context, ref string) (string, error)
	// Remove deletes a stored file. Used to compensate failed creations.
	Remove(ctx context.Context, ref string) error
}
