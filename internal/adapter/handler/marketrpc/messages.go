package marketrpc

// Amounts are decimal strings in the smallest currency unit.

type ListItemRequest struct {
	Collection string `json:"collection"`
	ItemId     uint64 `json:"item_id"`
	Price      string `json:"price"`
}

type ItemRequest struct {
	Collection string `json:"collection"`
	ItemId     uint64 `json:"item_id"`
}

type UpdateListingRequest struct {
	Collection string `json:"collection"`
	ItemId     uint64 `json:"item_id"`
	NewPrice   string `json:"new_price"`
}

type BuyItemRequest struct {
	RequestId  string `json:"request_id"`
	Collection string `json:"collection"`
	ItemId     uint64 `json:"item_id"`
	Payment    string `json:"payment"`
}

type WithdrawProceedsRequest struct {
	RequestId string `json:"request_id"`
}

type GetProceedsRequest struct {
	Seller string `json:"seller"`
}

type AckResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type ListingResponse struct {
	Collection string `json:"collection"`
	ItemId     uint64 `json:"item_id"`
	Seller     string `json:"seller,omitempty"`
	Price      string `json:"price"`
	Listed     bool   `json:"listed"`
}

type ProceedsResponse struct {
	Seller string `json:"seller"`
	Amount string `json:"amount"`
}
