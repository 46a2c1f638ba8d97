package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type EventType string

const (
	EventItemListed        EventType = "item_listed"
	EventItemCancelled     EventType = "item_cancelled"
	EventItemBought        EventType = "item_bought"
	EventProceedsWithdrawn EventType = "proceeds_withdrawn"
)

// Event is an observation emitted after a ledger operation commits.
// Price is the listing price for listing events and the withdrawn amount
// for EventProceedsWithdrawn.
type Event struct {
	ID         uuid.UUID       `json:"id"`
	Seq        uint64          `json:"seq"`
	Type       EventType       `json:"type"`
	Seller     Address         `json:"seller,omitempty"`
	Buyer      Address         `json:"buyer,omitempty"`
	Collection Address         `json:"collection,omitempty"`
	ItemID     uint64          `json:"item_id"`
	Price      decimal.Decimal `json:"price"`
	OccurredAt time.Time       `json:"occurred_at"`
}
