package port

import (
	"context"

	"github.com/rl1809/nft-marketplace/internal/core/domain"
)

type LedgerRepository interface {
	// LoadState returns active listings, positive balances and the last applied seq
	LoadState(ctx context.Context) (domain.State, error)

	// ApplyCommit writes a changeset; rows already at a newer seq are left untouched
	ApplyCommit(ctx context.Context, commit domain.Commit) error
}
