package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rl1809/nft-marketplace/internal/core/domain"
)

// book holds the two ledger maps plus an undo journal for the operation in
// progress.
type book struct {
	listings map[domain.ItemKey]domain.Listing
	proceeds map[domain.Address]decimal.Decimal

	journal []change
	events  []domain.Event
}

// change is one journaled write. The changeset of an operation is derived
// from the journal, so reverted writes never reach persistence.
type change struct {
	undo    func()
	item    *domain.ItemKey
	account *domain.Address
}

type snapshot struct {
	journal int
	events  int
}

func newBook() *book {
	return &book{
		listings: make(map[domain.ItemKey]domain.Listing),
		proceeds: make(map[domain.Address]decimal.Decimal),
	}
}

func (b *book) listing(key domain.ItemKey) (domain.Listing, bool) {
	l, ok := b.listings[key]
	if !ok || !l.Active() {
		return domain.Listing{}, false
	}
	return l, true
}

func (b *book) putListing(key domain.ItemKey, l domain.Listing) {
	prev, had := b.listings[key]
	b.journal = append(b.journal, change{item: &key, undo: func() {
		if had {
			b.listings[key] = prev
		} else {
			delete(b.listings, key)
		}
	}})
	b.listings[key] = l
}

func (b *book) removeListing(key domain.ItemKey) {
	prev, had := b.listings[key]
	if !had {
		return
	}
	b.journal = append(b.journal, change{item: &key, undo: func() { b.listings[key] = prev }})
	delete(b.listings, key)
}

func (b *book) balance(seller domain.Address) decimal.Decimal {
	v, ok := b.proceeds[seller]
	if !ok {
		return decimal.Zero
	}
	return v
}

func (b *book) setBalance(seller domain.Address, v decimal.Decimal) {
	prev, had := b.proceeds[seller]
	b.journal = append(b.journal, change{account: &seller, undo: func() {
		if had {
			b.proceeds[seller] = prev
		} else {
			delete(b.proceeds, seller)
		}
	}})
	if v.IsZero() {
		delete(b.proceeds, seller)
	} else {
		b.proceeds[seller] = v
	}
}

func (b *book) emit(ev domain.Event) {
	ev.ID = uuid.New()
	b.events = append(b.events, ev)
}

func (b *book) snapshot() snapshot {
	return snapshot{journal: len(b.journal), events: len(b.events)}
}

// revert undoes every journaled effect recorded after s.
func (b *book) revert(s snapshot) {
	for i := len(b.journal) - 1; i >= s.journal; i-- {
		b.journal[i].undo()
	}
	b.journal = b.journal[:s.journal]
	b.events = b.events[:s.events]
}

// flush builds the changeset of the finished operation and clears the
// journal.
func (b *book) flush(seq uint64, at time.Time) domain.Commit {
	c := domain.Commit{Seq: seq}
	seenItems := make(map[domain.ItemKey]struct{})
	seenAccounts := make(map[domain.Address]struct{})
	for _, ch := range b.journal {
		switch {
		case ch.item != nil:
			if _, ok := seenItems[*ch.item]; ok {
				continue
			}
			seenItems[*ch.item] = struct{}{}
			l, _ := b.listing(*ch.item)
			c.Listings = append(c.Listings, domain.ListingChange{Key: *ch.item, Listing: l})
		case ch.account != nil:
			if _, ok := seenAccounts[*ch.account]; ok {
				continue
			}
			seenAccounts[*ch.account] = struct{}{}
			c.Proceeds = append(c.Proceeds, domain.ProceedsChange{Seller: *ch.account, Balance: b.balance(*ch.account)})
		}
	}
	for _, ev := range b.events {
		ev.Seq = seq
		ev.OccurredAt = at
		c.Events = append(c.Events, ev)
	}
	b.reset()
	return c
}

func (b *book) reset() {
	b.journal = nil
	b.events = nil
}
