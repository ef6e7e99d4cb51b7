package cart

import "context"

// Repository persists whole carts. Writes are last-writer-wins.
type Repository interface {
	// Load returns the owner's cart, or an empty cart if none is stored
	Load(ctx context.Context, ownerID string) (*Cart, error)
	Save(ctx context.Context, c *Cart) error
	Delete(ctx context.Context, ownerID string) error
}

// Notice announces that an owner's cart changed on some server instance
type Notice struct {
	OwnerID string `json:"owner_id"`
	Version int    `json:"version"`
	Op      Op     `json:"op"`
	// Origin identifies the publishing instance
	Origin string `json:"origin"`
}

// Relay fans cart change notices out across server instances
type Relay interface {
	Publish(ctx context.Context, n Notice) error
	// Listen blocks, invoking fn for every notice until ctx is done
	Listen(ctx context.Context, fn func(Notice)) error
}
