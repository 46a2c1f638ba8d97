package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/nft-marketplace/internal/core/domain"
)

func TestBook_RevertDropsChangesFromCommit(t *testing.T) {
	b := newBook()
	kept := domain.ItemKey{Collection: "0xc0", ItemID: 1}
	dropped := domain.ItemKey{Collection: "0xc0", ItemID: 2}

	b.putListing(kept, domain.Listing{Seller: "0xa", Price: decimal.NewFromInt(5)})
	snap := b.snapshot()
	b.putListing(dropped, domain.Listing{Seller: "0xa", Price: decimal.NewFromInt(7)})
	b.setBalance("0xb", decimal.NewFromInt(3))
	b.emit(domain.Event{Type: domain.EventItemListed})
	b.revert(snap)

	c := b.flush(1, time.Unix(0, 0))
	require.Len(t, c.Listings, 1)
	require.Equal(t, kept, c.Listings[0].Key)
	require.Empty(t, c.Proceeds)
	require.Empty(t, c.Events)
	require.Empty(t, b.journal)
}

func TestBook_FlushReportsEachKeyOnce(t *testing.T) {
	b := newBook()
	key := domain.ItemKey{Collection: "0xc0", ItemID: 1}

	b.putListing(key, domain.Listing{Seller: "0xa", Price: decimal.NewFromInt(5)})
	b.removeListing(key)
	b.setBalance("0xa", decimal.NewFromInt(5))
	b.setBalance("0xa", decimal.NewFromInt(9))

	c := b.flush(2, time.Unix(0, 0))
	require.Len(t, c.Listings, 1)
	require.False(t, c.Listings[0].Listing.Active())
	require.Len(t, c.Proceeds, 1)
	require.True(t, decimal.NewFromInt(9).Equal(c.Proceeds[0].Balance))
}
