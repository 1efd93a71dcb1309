package deliverynote

import (
	"context"

	"github.com/flexprice/notebilling/internal/types"
)

// Repository defines the interface for delivery note persistence operations
type Repository interface {
	// Create persists the note together with its lines
	Create(ctx context.Context, note *DeliveryNote) error
	Get(ctx context.Context, id string) (*DeliveryNote, error)
	GetByNumber(ctx context.Context, number string) (*DeliveryNote, error)
	// List returns notes with their lines loaded
	List(ctx context.Context, filter *types.DeliveryNoteFilter) ([]*DeliveryNote, error)
	Count(ctx context.Context, filter *types.DeliveryNoteFilter) (int, error)
	// Update writes scalar fields and replaces the whole line sequence
	Update(ctx context.Context, note *DeliveryNote) error
	Delete(ctx context.Context, note *DeliveryNote) error
}
