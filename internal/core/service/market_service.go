package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/rl1809/nft-marketplace/internal/core/domain"
	"github.com/rl1809/nft-marketplace/internal/core/ledger"
	"github.com/rl1809/nft-marketplace/internal/port"
)

var (
	ErrDuplicateRequest = errors.New("duplicate request")
	ErrMissingRequestID = errors.New("missing request id")
)

// MarketService is the entry point used by transports. Buy and Withdraw are
// keyed by a caller supplied request id so a retried request cannot move
// value twice.
type MarketService struct {
	ledger *ledger.Ledger
	cache  port.CacheRepository
	logger *slog.Logger
}

// NewMarketService wires the ledger with an optional cache. Without a cache
// request ids are required but not deduplicated.
func NewMarketService(l *ledger.Ledger, cache port.CacheRepository, logger *slog.Logger) *MarketService {
	if logger == nil {
		logger = slog.Default()
	}
	return &MarketService{
		ledger: l,
		cache:  cache,
		logger: logger,
	}
}

func (s *MarketService) List(ctx context.Context, seller domain.Address, item domain.ItemKey, price decimal.Decimal) error {
	return s.ledger.List(ctx, seller, item, price)
}

func (s *MarketService) Cancel(ctx context.Context, seller domain.Address, item domain.ItemKey) error {
	return s.ledger.Cancel(ctx, seller, item)
}

func (s *MarketService) UpdatePrice(ctx context.Context, seller domain.Address, item domain.ItemKey, price decimal.Decimal) error {
	return s.ledger.UpdatePrice(ctx, seller, item, price)
}

func (s *MarketService) Buy(ctx context.Context, requestID string, buyer domain.Address, item domain.ItemKey, payment decimal.Decimal) error {
	return s.once(ctx, "buy", requestID, func() error {
		if err := s.ledger.Buy(ctx, buyer, item, payment); err != nil {
			return err
		}
		s.logger.Info("item bought",
			"collection", item.Collection,
			"item_id", item.ItemID,
			"buyer", buyer,
			"payment", payment.String(),
		)
		return nil
	})
}

func (s *MarketService) Withdraw(ctx context.Context, requestID string, seller domain.Address) error {
	return s.once(ctx, "withdraw", requestID, func() error {
		if err := s.ledger.Withdraw(ctx, seller); err != nil {
			return err
		}
		s.logger.Info("proceeds withdrawn", "seller", seller)
		return nil
	})
}

func (s *MarketService) GetListing(ctx context.Context, item domain.ItemKey) domain.Listing {
	return s.ledger.GetListing(ctx, item)
}

func (s *MarketService) GetProceeds(ctx context.Context, seller domain.Address) decimal.Decimal {
	return s.ledger.GetProceeds(ctx, seller)
}

// GetCommitQueue exposes committed changesets for the dispatcher.
func (s *MarketService) GetCommitQueue() <-chan domain.Commit {
	return s.ledger.Commits()
}

func (s *MarketService) Close() {
	s.ledger.Close()
}

// once runs fn at most once per request id. The id is released again when
// fn fails so the caller may retry.
func (s *MarketService) once(ctx context.Context, op, requestID string, fn func() error) error {
	if requestID == "" {
		return ErrMissingRequestID
	}
	if s.cache == nil {
		return fn()
	}

	idempotencyKey := fmt.Sprintf("request:%s:%s", op, requestID)

	ok, err := s.cache.SetIdempotency(ctx, idempotencyKey)
	if err != nil {
		return fmt.Errorf("idempotency check failed: %w", err)
	}
	if !ok {
		return ErrDuplicateRequest
	}

	if err := fn(); err != nil {
		if releaseErr := s.cache.ReleaseIdempotency(ctx, idempotencyKey); releaseErr != nil {
			s.logger.Warn("failed to release request id", "key", idempotencyKey, "error", releaseErr)
		}
		return err
	}
	return nil
}
