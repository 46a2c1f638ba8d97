package domain

import "github.com/shopspring/decimal"

// Listing is an active sale offer. The zero Listing (price 0) is the
// absent sentinel.
type Listing struct {
	Seller Address
	Price  decimal.Decimal
}

// Active reports whether the listing is an offer.
func (l Listing) Active() bool {
	return l.Price.Sign() > 0
}

// State is a full copy of the ledger maps, used to seed a ledger on startup.
type State struct {
	Seq      uint64
	Listings map[ItemKey]Listing
	Proceeds map[Address]decimal.Decimal
}

// ListingChange carries the committed value of one listing key. A zero
// Listing means the key was removed.
type ListingChange struct {
	Key     ItemKey
	Listing Listing
}

// ProceedsChange carries the committed balance of one seller.
type ProceedsChange struct {
	Seller  Address
	Balance decimal.Decimal
}

// Commit is the changeset of one successful ledger operation.
type Commit struct {
	Seq      uint64
	Listings []ListingChange
	Proceeds []ProceedsChange
	Events   []Event
}
