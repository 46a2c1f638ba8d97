package ledger_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/nft-marketplace/internal/core/domain"
	"github.com/rl1809/nft-marketplace/internal/core/ledger"
)

func TestBuy_ReentrantBuySeesNoListing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.ledger.List(ctx, seller, item, price))
	f.drain()

	var nestedErr error
	var nestedListing domain.Listing
	var nestedProceeds decimal.Decimal
	f.registry.SetTransferHook(func(ctx context.Context, key domain.ItemKey, _, _ domain.Address) error {
		nestedListing = f.ledger.GetListing(ctx, key)
		nestedProceeds = f.ledger.GetProceeds(ctx, seller)
		nestedErr = f.ledger.Buy(ctx, other, key, price)
		return nil
	})

	require.NoError(t, f.ledger.Buy(ctx, buyer, item, price))

	requireKind(t, nestedErr, ledger.ErrNotListed)
	require.False(t, nestedListing.Active())
	requireAmount(t, price, nestedProceeds)

	requireAmount(t, price, f.ledger.GetProceeds(ctx, seller))
	owner, _ := f.registry.OwnerOf(ctx, item)
	require.Equal(t, buyer, owner)

	commits := f.drain()
	require.Len(t, commits, 1)
	require.Len(t, commits[0].Events, 1)
}

func TestWithdraw_ReentrantWithdrawSeesNoProceeds(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.ledger.List(ctx, seller, item, price))
	require.NoError(t, f.ledger.Buy(ctx, buyer, item, price))

	var nestedErr error
	f.wallet.SetReleaseHook(func(ctx context.Context, to domain.Address, _ decimal.Decimal) error {
		nestedErr = f.ledger.Withdraw(ctx, to)
		return nil
	})

	require.NoError(t, f.ledger.Withdraw(ctx, seller))
	requireKind(t, nestedErr, ledger.ErrNoProceeds)
	requireAmount(t, price, f.wallet.Balance(seller))
}

func TestBuy_FailureRevertsNestedEffects(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	second := domain.ItemKey{Collection: collection, ItemID: 1}
	require.NoError(t, f.registry.Mint(second, seller))
	require.NoError(t, f.registry.Approve(seller, second, market))
	require.NoError(t, f.ledger.List(ctx, seller, item, price))
	f.drain()

	boom := errors.New("receiver rejected item")
	var nestedErr error
	f.registry.SetTransferHook(func(ctx context.Context, _ domain.ItemKey, _, _ domain.Address) error {
		nestedErr = f.ledger.List(ctx, seller, second, price)
		return boom
	})

	require.ErrorIs(t, f.ledger.Buy(ctx, buyer, item, price), boom)
	require.NoError(t, nestedErr)

	require.True(t, f.ledger.GetListing(ctx, item).Active())
	require.False(t, f.ledger.GetListing(ctx, second).Active())
	require.True(t, f.ledger.GetProceeds(ctx, seller).IsZero())
	require.Empty(t, f.drain())
}

func TestBuy_NestedFailureKeepsOuterEffects(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.ledger.List(ctx, seller, item, price))
	f.drain()

	f.registry.SetTransferHook(func(ctx context.Context, key domain.ItemKey, _, _ domain.Address) error {
		// rejected inside the outer buy, which still goes through
		f.ledger.Cancel(ctx, seller, key)
		return nil
	})

	require.NoError(t, f.ledger.Buy(ctx, buyer, item, price))
	requireAmount(t, price, f.ledger.GetProceeds(ctx, seller))

	commits := f.drain()
	require.Len(t, commits, 1)
	require.Equal(t, domain.EventItemBought, commits[0].Events[0].Type)
}

func TestBuy_ConcurrentBuyersOneWins(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.ledger.List(ctx, seller, item, price))

	var successCount atomic.Int32
	var notListedCount atomic.Int32
	var wg sync.WaitGroup
	totalRequests := 50

	for i := 0; i < totalRequests; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			b := domain.Address("0xbuyer" + string(rune('a'+id%26)))
			err := f.ledger.Buy(ctx, b, item, price)
			switch {
			case err == nil:
				successCount.Add(1)
			case errors.Is(err, ledger.ErrNotListed):
				notListedCount.Add(1)
			}
		}(i)
	}
	wg.Wait()

	require.Equal(t, int32(1), successCount.Load())
	require.Equal(t, int32(totalRequests-1), notListedCount.Load())
	requireAmount(t, price, f.ledger.GetProceeds(ctx, seller))
}

func TestWithdraw_ReentrantDuringFailedBuyIsRejected(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	second := domain.ItemKey{Collection: collection, ItemID: 1}
	require.NoError(t, f.registry.Mint(second, seller))
	require.NoError(t, f.registry.Approve(seller, second, market))
	require.NoError(t, f.ledger.List(ctx, seller, item, price))
	require.NoError(t, f.ledger.Buy(ctx, buyer, item, price))
	require.NoError(t, f.ledger.List(ctx, seller, second, price))
	f.drain()

	boom := errors.New("receiver rejected item")
	var nestedErr error
	f.registry.SetTransferHook(func(ctx context.Context, _ domain.ItemKey, _, _ domain.Address) error {
		nestedErr = f.ledger.Withdraw(ctx, seller)
		return boom
	})

	require.ErrorIs(t, f.ledger.Buy(ctx, other, second, price), boom)
	requireKind(t, nestedErr, ledger.ErrReentrant)
	require.True(t, f.wallet.Balance(seller).IsZero())
	requireAmount(t, price, f.ledger.GetProceeds(ctx, seller))
	require.True(t, f.ledger.GetListing(ctx, second).Active())
	require.Empty(t, f.drain())

	require.NoError(t, f.ledger.Withdraw(ctx, seller))
	requireAmount(t, price, f.wallet.Balance(seller))
	require.ErrorIs(t, f.ledger.Withdraw(ctx, seller), ledger.ErrNoProceeds)
	requireAmount(t, price, f.wallet.Balance(seller))
}

func TestBuy_ReentrantBuyDuringFailedBuyIsRejected(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	second := domain.ItemKey{Collection: collection, ItemID: 1}
	require.NoError(t, f.registry.Mint(second, seller))
	require.NoError(t, f.registry.Approve(seller, second, market))
	require.NoError(t, f.ledger.List(ctx, seller, item, price))
	require.NoError(t, f.ledger.List(ctx, seller, second, price))
	f.drain()

	boom := errors.New("receiver rejected item")
	var nestedErr error
	f.registry.SetTransferHook(func(ctx context.Context, key domain.ItemKey, _, _ domain.Address) error {
		if key == item {
			nestedErr = f.ledger.Buy(ctx, other, second, price)
		}
		return boom
	})

	require.ErrorIs(t, f.ledger.Buy(ctx, buyer, item, price), boom)
	requireKind(t, nestedErr, ledger.ErrReentrant)

	owner, err := f.registry.OwnerOf(ctx, second)
	require.NoError(t, err)
	require.Equal(t, seller, owner)
	owner, err = f.registry.OwnerOf(ctx, item)
	require.NoError(t, err)
	require.Equal(t, seller, owner)

	require.True(t, f.ledger.GetListing(ctx, item).Active())
	require.True(t, f.ledger.GetListing(ctx, second).Active())
	require.True(t, f.ledger.GetProceeds(ctx, seller).IsZero())
	require.Empty(t, f.drain())
}
