package domain

import (
	"fmt"
	"strings"
)

// Address identifies an account or an asset collection.
type Address string

// NormalizeAddress trims and lowercases s so hex addresses compare equal
// regardless of checksum casing.
func NormalizeAddress(s string) Address {
	return Address(strings.ToLower(strings.TrimSpace(s)))
}

func (a Address) IsZero() bool {
	return a == ""
}

// ItemKey is the compound identity of one asset inside a collection.
type ItemKey struct {
	Collection Address
	ItemID     uint64
}

func NewItemKey(collection string, itemID uint64) ItemKey {
	return ItemKey{Collection: NormalizeAddress(collection), ItemID: itemID}
}

func (k ItemKey) String() string {
	return fmt.Sprintf("%s#%d", k.Collection, k.ItemID)
}
