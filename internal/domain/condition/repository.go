package condition

import "context"

// Repository exposes read access to experiment conditions.
type Repository interface {
	FindByPublicID(ctx context.Context, publicID string) (*Condition, error)

	// PickRandomActive selects one active condition under the experiment
	// uniformly at random. Returns a NoActiveConditions error when the
	// active set is empty.
	PickRandomActive(ctx context.Context, experimentID string) (*Condition, error)
}
