package wallet

import (
	"context"
	"log/slog"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/rl1809/nft-marketplace/internal/core/domain"
)

// ReleaseHook runs before funds are credited, without the wallet lock held.
// A non-nil error aborts the release.
type ReleaseHook func(ctx context.Context, to domain.Address, amount decimal.Decimal) error

// MemoryWallet pays withdrawals out into in-process balances.
type MemoryWallet struct {
	mu       sync.Mutex
	balances map[domain.Address]decimal.Decimal
	hook     ReleaseHook
	logger   *slog.Logger
}

func NewMemoryWallet(logger *slog.Logger) *MemoryWallet {
	if logger == nil {
		logger = slog.Default()
	}
	return &MemoryWallet{
		balances: make(map[domain.Address]decimal.Decimal),
		logger:   logger,
	}
}

func (w *MemoryWallet) SetReleaseHook(fn ReleaseHook) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.hook = fn
}

func (w *MemoryWallet) Release(ctx context.Context, to domain.Address, amount decimal.Decimal) error {
	w.mu.Lock()
	hook := w.hook
	w.mu.Unlock()

	if hook != nil {
		if err := hook(ctx, to, amount); err != nil {
			return err
		}
	}

	w.mu.Lock()
	w.balances[to] = w.balance(to).Add(amount)
	w.mu.Unlock()

	w.logger.Info("funds released", "to", to, "amount", amount.String())
	return nil
}

// Balance returns everything released to addr so far.
func (w *MemoryWallet) Balance(addr domain.Address) decimal.Decimal {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.balance(addr)
}

func (w *MemoryWallet) balance(addr domain.Address) decimal.Decimal {
	if v, ok := w.balances[addr]; ok {
		return v
	}
	return decimal.Zero
}
