package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/shopspring/decimal"

	"github.com/rl1809/nft-marketplace/internal/core/domain"
	"github.com/rl1809/nft-marketplace/internal/core/service"
)

// AccountHeader carries the caller address on mutating requests.
const AccountHeader = "X-Account"

type HTTPHandler struct {
	marketService *service.MarketService
	events        EventSource
	decimals      int32
	logger        *slog.Logger
}

type ListItemHTTPRequest struct {
	Collection string `json:"collection"`
	ItemID     uint64 `json:"item_id"`
	Price      string `json:"price"`
}

type UpdateListingHTTPRequest struct {
	Price string `json:"price"`
}

type BuyItemHTTPRequest struct {
	RequestID string `json:"request_id"`
	Payment   string `json:"payment"`
}

type WithdrawHTTPRequest struct {
	RequestID string `json:"request_id"`
}

type APIResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type ListingHTTPResponse struct {
	Collection   string `json:"collection"`
	ItemID       uint64 `json:"item_id"`
	Seller       string `json:"seller,omitempty"`
	Price        string `json:"price"`
	PriceDisplay string `json:"price_display"`
	Listed       bool   `json:"listed"`
}

type ProceedsHTTPResponse struct {
	Seller        string `json:"seller"`
	Amount        string `json:"amount"`
	AmountDisplay string `json:"amount_display"`
}

// NewHTTPHandler builds the REST handler. events may be nil, in which case
// the websocket route is not mounted. decimals only affects the *_display
// response fields; requests always carry smallest units.
func NewHTTPHandler(marketService *service.MarketService, events EventSource, decimals int32, logger *slog.Logger) *HTTPHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPHandler{
		marketService: marketService,
		events:        events,
		decimals:      decimals,
		logger:        logger,
	}
}

func (h *HTTPHandler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", h.HealthCheck)

	r.Route("/api", func(api chi.Router) {
		api.Post("/listings", h.ListItem)
		api.Get("/listings/{collection}/{itemID}", h.GetListing)
		api.Put("/listings/{collection}/{itemID}", h.UpdateListing)
		api.Delete("/listings/{collection}/{itemID}", h.CancelListing)
		api.Post("/listings/{collection}/{itemID}/buy", h.BuyItem)

		api.Get("/proceeds/{seller}", h.GetProceeds)
		api.Post("/proceeds/withdraw", h.WithdrawProceeds)
	})

	if h.events != nil {
		r.Get("/ws/events", h.StreamEvents)
	}
	return r
}

func (h *HTTPHandler) ListItem(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	var req ListItemHTTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Message: "invalid request body"})
		return
	}
	if req.Collection == "" || req.Price == "" {
		writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Message: "missing required fields"})
		return
	}
	price, ok := parseAmount(w, req.Price)
	if !ok {
		return
	}

	item := domain.NewItemKey(req.Collection, req.ItemID)
	if err := h.marketService.List(r.Context(), caller, item, price); err != nil {
		h.writeError(w, "list", err)
		return
	}

	writeJSON(w, http.StatusCreated, APIResponse{Success: true, Message: "item listed"})
}

func (h *HTTPHandler) GetListing(w http.ResponseWriter, r *http.Request) {
	item, ok := itemFromPath(w, r)
	if !ok {
		return
	}

	listing := h.marketService.GetListing(r.Context(), item)
	writeJSON(w, http.StatusOK, ListingHTTPResponse{
		Collection:   string(item.Collection),
		ItemID:       item.ItemID,
		Seller:       string(listing.Seller),
		Price:        listing.Price.String(),
		PriceDisplay: domain.FormatUnits(listing.Price, h.decimals),
		Listed:       listing.Active(),
	})
}

func (h *HTTPHandler) UpdateListing(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	item, ok := itemFromPath(w, r)
	if !ok {
		return
	}

	var req UpdateListingHTTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Price == "" {
		writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Message: "invalid request body"})
		return
	}
	price, ok := parseAmount(w, req.Price)
	if !ok {
		return
	}

	if err := h.marketService.UpdatePrice(r.Context(), caller, item, price); err != nil {
		h.writeError(w, "update", err)
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{Success: true, Message: "listing updated"})
}

func (h *HTTPHandler) CancelListing(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	item, ok := itemFromPath(w, r)
	if !ok {
		return
	}

	if err := h.marketService.Cancel(r.Context(), caller, item); err != nil {
		h.writeError(w, "cancel", err)
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{Success: true, Message: "listing cancelled"})
}

func (h *HTTPHandler) BuyItem(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	item, ok := itemFromPath(w, r)
	if !ok {
		return
	}

	var req BuyItemHTTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Message: "invalid request body"})
		return
	}
	if req.RequestID == "" || req.Payment == "" {
		writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Message: "missing required fields"})
		return
	}
	payment, ok := parseAmount(w, req.Payment)
	if !ok {
		return
	}

	if err := h.marketService.Buy(r.Context(), req.RequestID, caller, item, payment); err != nil {
		h.writeError(w, "buy", err)
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{Success: true, Message: "item bought"})
}

func (h *HTTPHandler) GetProceeds(w http.ResponseWriter, r *http.Request) {
	seller := domain.NormalizeAddress(chi.URLParam(r, "seller"))
	if seller.IsZero() {
		writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Message: "missing seller"})
		return
	}

	amount := h.marketService.GetProceeds(r.Context(), seller)
	writeJSON(w, http.StatusOK, ProceedsHTTPResponse{
		Seller:        string(seller),
		Amount:        amount.String(),
		AmountDisplay: domain.FormatUnits(amount, h.decimals),
	})
}

func (h *HTTPHandler) WithdrawProceeds(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	var req WithdrawHTTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Message: "invalid request body"})
		return
	}
	if req.RequestID == "" {
		writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Message: "missing required fields"})
		return
	}

	if err := h.marketService.Withdraw(r.Context(), req.RequestID, caller); err != nil {
		h.writeError(w, "withdraw", err)
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{Success: true, Message: "proceeds withdrawn"})
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HTTPHandler) caller(w http.ResponseWriter, r *http.Request) (domain.Address, bool) {
	caller := domain.NormalizeAddress(r.Header.Get(AccountHeader))
	if caller.IsZero() {
		h.writeError(w, "auth", errMissingAccount)
		return "", false
	}
	return caller, true
}

func (h *HTTPHandler) writeError(w http.ResponseWriter, op string, err error) {
	m := classifyError(err)
	if m.status >= http.StatusInternalServerError {
		h.logger.Error("request failed", "op", op, "error", err)
	}
	writeJSON(w, m.status, APIResponse{Success: false, Message: m.message})
}

func itemFromPath(w http.ResponseWriter, r *http.Request) (domain.ItemKey, bool) {
	collection := chi.URLParam(r, "collection")
	itemID, err := strconv.ParseUint(chi.URLParam(r, "itemID"), 10, 64)
	if collection == "" || err != nil {
		writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Message: "invalid item"})
		return domain.ItemKey{}, false
	}
	return domain.NewItemKey(collection, itemID), true
}

func parseAmount(w http.ResponseWriter, s string) (decimal.Decimal, bool) {
	amount, err := domain.ParseAmount(s)
	if errors.Is(err, domain.ErrAmountTooLarge) {
		writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Message: "amount too large"})
		return decimal.Zero, false
	}
	if err != nil {
		writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Message: "invalid amount"})
		return decimal.Zero, false
	}
	return amount, true
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
