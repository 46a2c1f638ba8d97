package port

import (
	"context"

	"github.com/rl1809/nft-marketplace/internal/core/domain"
)

// AssetRegistry answers ownership questions and moves items. Implementations
// may call back into the ledger synchronously with the context they receive.
type AssetRegistry interface {
	// OwnerOf returns the current holder, fails if the item does not exist
	OwnerOf(ctx context.Context, item domain.ItemKey) (domain.Address, error)

	// IsApprovedForTransfer reports whether operator may move the item, either
	// through a per-item approval or a collection-wide delegation
	IsApprovedForTransfer(ctx context.Context, item domain.ItemKey, operator domain.Address) (bool, error)

	// Transfer moves the item from -> to, acting as operator
	Transfer(ctx context.Context, operator domain.Address, item domain.ItemKey, from, to domain.Address) error
}
