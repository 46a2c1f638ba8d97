package handler

import (
	"context"
	"log/slog"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/rl1809/nft-marketplace/internal/adapter/handler/marketrpc"
	"github.com/rl1809/nft-marketplace/internal/core/domain"
	"github.com/rl1809/nft-marketplace/internal/core/service"
)

type GRPCHandler struct {
	marketrpc.UnimplementedMarketServiceServer
	marketService *service.MarketService
	logger        *slog.Logger
}

func NewGRPCHandler(marketService *service.MarketService, logger *slog.Logger) *GRPCHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &GRPCHandler{marketService: marketService, logger: logger}
}

func (h *GRPCHandler) ListItem(ctx context.Context, req *marketrpc.ListItemRequest) (*marketrpc.AckResponse, error) {
	caller, err := callerFromMetadata(ctx)
	if err != nil {
		return nil, h.toStatus("list", err)
	}
	price, err := domain.ParseAmount(req.Price)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, "invalid price")
	}

	item := domain.NewItemKey(req.Collection, req.ItemId)
	if err := h.marketService.List(ctx, caller, item, price); err != nil {
		return nil, h.toStatus("list", err)
	}
	return &marketrpc.AckResponse{Success: true, Message: "item listed"}, nil
}

func (h *GRPCHandler) CancelListing(ctx context.Context, req *marketrpc.ItemRequest) (*marketrpc.AckResponse, error) {
	caller, err := callerFromMetadata(ctx)
	if err != nil {
		return nil, h.toStatus("cancel", err)
	}

	item := domain.NewItemKey(req.Collection, req.ItemId)
	if err := h.marketService.Cancel(ctx, caller, item); err != nil {
		return nil, h.toStatus("cancel", err)
	}
	return &marketrpc.AckResponse{Success: true, Message: "listing cancelled"}, nil
}

func (h *GRPCHandler) UpdateListing(ctx context.Context, req *marketrpc.UpdateListingRequest) (*marketrpc.AckResponse, error) {
	caller, err := callerFromMetadata(ctx)
	if err != nil {
		return nil, h.toStatus("update", err)
	}
	price, err := domain.ParseAmount(req.NewPrice)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, "invalid price")
	}

	item := domain.NewItemKey(req.Collection, req.ItemId)
	if err := h.marketService.UpdatePrice(ctx, caller, item, price); err != nil {
		return nil, h.toStatus("update", err)
	}
	return &marketrpc.AckResponse{Success: true, Message: "listing updated"}, nil
}

func (h *GRPCHandler) BuyItem(ctx context.Context, req *marketrpc.BuyItemRequest) (*marketrpc.AckResponse, error) {
	caller, err := callerFromMetadata(ctx)
	if err != nil {
		return nil, h.toStatus("buy", err)
	}
	payment, err := domain.ParseAmount(req.Payment)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, "invalid payment")
	}

	item := domain.NewItemKey(req.Collection, req.ItemId)
	if err := h.marketService.Buy(ctx, req.RequestId, caller, item, payment); err != nil {
		return nil, h.toStatus("buy", err)
	}
	return &marketrpc.AckResponse{Success: true, Message: "item bought"}, nil
}

func (h *GRPCHandler) WithdrawProceeds(ctx context.Context, req *marketrpc.WithdrawProceedsRequest) (*marketrpc.AckResponse, error) {
	caller, err := callerFromMetadata(ctx)
	if err != nil {
		return nil, h.toStatus("withdraw", err)
	}

	if err := h.marketService.Withdraw(ctx, req.RequestId, caller); err != nil {
		return nil, h.toStatus("withdraw", err)
	}
	return &marketrpc.AckResponse{Success: true, Message: "proceeds withdrawn"}, nil
}

func (h *GRPCHandler) GetListing(ctx context.Context, req *marketrpc.ItemRequest) (*marketrpc.ListingResponse, error) {
	item := domain.NewItemKey(req.Collection, req.ItemId)
	listing := h.marketService.GetListing(ctx, item)
	return &marketrpc.ListingResponse{
		Collection: string(item.Collection),
		ItemId:     item.ItemID,
		Seller:     string(listing.Seller),
		Price:      listing.Price.String(),
		Listed:     listing.Active(),
	}, nil
}

func (h *GRPCHandler) GetProceeds(ctx context.Context, req *marketrpc.GetProceedsRequest) (*marketrpc.ProceedsResponse, error) {
	seller := domain.NormalizeAddress(req.Seller)
	if seller.IsZero() {
		return nil, status.Error(codes.InvalidArgument, "missing seller")
	}
	amount := h.marketService.GetProceeds(ctx, seller)
	return &marketrpc.ProceedsResponse{Seller: string(seller), Amount: amount.String()}, nil
}

func (h *GRPCHandler) toStatus(op string, err error) error {
	m := classifyError(err)
	if m.code == codes.Internal {
		h.logger.Error("rpc failed", "op", op, "error", err)
	}
	return status.Error(m.code, m.message)
}

func callerFromMetadata(ctx context.Context) (domain.Address, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", errMissingAccount
	}
	values := md.Get(marketrpc.AccountMetadataKey)
	if len(values) == 0 {
		return "", errMissingAccount
	}
	caller := domain.NormalizeAddress(values[0])
	if caller.IsZero() {
		return "", errMissingAccount
	}
	return caller, nil
}
