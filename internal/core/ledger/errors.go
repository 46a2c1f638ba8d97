package ledger

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/rl1809/nft-marketplace/internal/core/domain"
)

var (
	ErrAlreadyListed       = errors.New("already listed")
	ErrNotListed           = errors.New("not listed")
	ErrNotOwner            = errors.New("not owner")
	ErrNotApproved         = errors.New("not approved for marketplace")
	ErrPriceMustBePositive = errors.New("price must be above zero")
	ErrPriceNotMet         = errors.New("price not met")
	ErrNoProceeds          = errors.New("no proceeds")
	ErrReentrant           = errors.New("value transfer inside another operation")
	ErrClosed              = errors.New("ledger closed")
)

// PreconditionError reports the single invariant an operation violated.
// Err is one of the sentinel errors above.
type PreconditionError struct {
	Err     error
	Item    domain.ItemKey
	Account domain.Address
	Price   decimal.Decimal
	Payment decimal.Decimal
}

func (e *PreconditionError) Error() string {
	switch e.Err {
	case ErrNoProceeds:
		return fmt.Sprintf("%v: %s", e.Err, e.Account)
	case ErrReentrant:
		if e.Item == (domain.ItemKey{}) {
			return fmt.Sprintf("%v: %s", e.Err, e.Account)
		}
		return fmt.Sprintf("%v: %s on %s", e.Err, e.Account, e.Item)
	case ErrNotOwner:
		return fmt.Sprintf("%v: %s on %s", e.Err, e.Account, e.Item)
	case ErrPriceMustBePositive:
		return fmt.Sprintf("%v: %s on %s", e.Err, e.Price, e.Item)
	case ErrPriceNotMet:
		return fmt.Sprintf("%v: %s offered for %s priced %s", e.Err, e.Payment, e.Item, e.Price)
	default:
		return fmt.Sprintf("%v: %s", e.Err, e.Item)
	}
}

func (e *PreconditionError) Unwrap() error {
	return e.Err
}

func itemError(err error, item domain.ItemKey) error {
	return &PreconditionError{Err: err, Item: item}
}
