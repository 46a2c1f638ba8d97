package port

import (
	"context"

	"github.com/rl1809/nft-marketplace/internal/core/domain"
	"github.com/shopspring/decimal"
)

type FundsReleaser interface {
	// Release pays amount out to the account
	Release(ctx context.Context, to domain.Address, amount decimal.Decimal) error
}
