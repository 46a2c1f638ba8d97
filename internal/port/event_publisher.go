package port

import (
	"context"

	"github.com/rl1809/nft-marketplace/internal/core/domain"
)

type EventPublisher interface {
	// Publish delivers committed events in seq order
	Publish(ctx context.Context, events []domain.Event) error
}
