package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rl1809/nft-marketplace/internal/core/domain"
	"github.com/rl1809/nft-marketplace/internal/port"
)

// Ledger owns the listing map and the proceeds map and is their only
// mutator.
type Ledger struct {
	operator domain.Address
	registry port.AssetRegistry
	funds    port.FundsReleaser
	logger   *slog.Logger
	now      func() time.Time

	mu      sync.Mutex
	book    *book
	seq     uint64
	commits chan domain.Commit
	closed  bool
}

type Option func(*Ledger)

func WithLogger(logger *slog.Logger) Option {
	return func(l *Ledger) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithCommitQueue enables the commit queue. Each successful operation sends
// its changeset to the queue while holding the ledger lock, so a full queue
// stalls the ledger until it is drained.
func WithCommitQueue(size int) Option {
	return func(l *Ledger) {
		l.commits = make(chan domain.Commit, size)
	}
}

// WithState seeds the ledger, typically from a repository on startup.
func WithState(st domain.State) Option {
	return func(l *Ledger) {
		for key, listing := range st.Listings {
			if listing.Active() {
				l.book.listings[key] = listing
			}
		}
		for seller, balance := range st.Proceeds {
			if balance.Sign() > 0 {
				l.book.proceeds[seller] = balance
			}
		}
		l.seq = st.Seq
	}
}

func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		l.now = now
	}
}

// New creates a ledger acting as operator towards the registry.
func New(operator domain.Address, registry port.AssetRegistry, funds port.FundsReleaser, opts ...Option) *Ledger {
	l := &Ledger{
		operator: operator,
		registry: registry,
		funds:    funds,
		logger:   slog.Default(),
		now:      time.Now,
		book:     newBook(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// List offers an item owned by seller for price.
func (l *Ledger) List(ctx context.Context, seller domain.Address, item domain.ItemKey, price decimal.Decimal) error {
	return l.execute(ctx, "list", func(ctx context.Context) error {
		if _, ok := l.book.listing(item); ok {
			return itemError(ErrAlreadyListed, item)
		}

		owner, err := l.registry.OwnerOf(ctx, item)
		if err != nil {
			return fmt.Errorf("owner of %s: %w", item, err)
		}
		if owner != seller {
			return &PreconditionError{Err: ErrNotOwner, Item: item, Account: seller}
		}

		if price.Sign() <= 0 {
			return &PreconditionError{Err: ErrPriceMustBePositive, Item: item, Price: price}
		}

		approved, err := l.registry.IsApprovedForTransfer(ctx, item, l.operator)
		if err != nil {
			return fmt.Errorf("approval of %s: %w", item, err)
		}
		if !approved {
			return itemError(ErrNotApproved, item)
		}

		l.book.putListing(item, domain.Listing{Seller: seller, Price: price})
		l.book.emit(domain.Event{
			Type:       domain.EventItemListed,
			Seller:     seller,
			Collection: item.Collection,
			ItemID:     item.ItemID,
			Price:      price,
		})
		return nil
	})
}

// Cancel removes a listing. Only the seller recorded at listing time may
// cancel, even if the item changed hands since.
func (l *Ledger) Cancel(ctx context.Context, caller domain.Address, item domain.ItemKey) error {
	return l.execute(ctx, "cancel", func(ctx context.Context) error {
		listing, err := l.sellerListing(caller, item)
		if err != nil {
			return err
		}

		l.book.removeListing(item)
		l.book.emit(domain.Event{
			Type:       domain.EventItemCancelled,
			Seller:     listing.Seller,
			Collection: item.Collection,
			ItemID:     item.ItemID,
		})
		return nil
	})
}

// UpdatePrice reprices a listing. Watchers see it as a fresh listing.
func (l *Ledger) UpdatePrice(ctx context.Context, caller domain.Address, item domain.ItemKey, newPrice decimal.Decimal) error {
	return l.execute(ctx, "update", func(ctx context.Context) error {
		listing, err := l.sellerListing(caller, item)
		if err != nil {
			return err
		}
		if newPrice.Sign() <= 0 {
			return &PreconditionError{Err: ErrPriceMustBePositive, Item: item, Price: newPrice}
		}

		listing.Price = newPrice
		l.book.putListing(item, listing)
		l.book.emit(domain.Event{
			Type:       domain.EventItemListed,
			Seller:     listing.Seller,
			Collection: item.Collection,
			ItemID:     item.ItemID,
			Price:      newPrice,
		})
		return nil
	})
}

// Buy pays for a listed item. The whole payment is credited to the seller;
// overpayment is not refunded.
func (l *Ledger) Buy(ctx context.Context, buyer domain.Address, item domain.ItemKey, payment decimal.Decimal) error {
	return l.execute(ctx, "buy", func(ctx context.Context) error {
		listing, ok := l.book.listing(item)
		if !ok {
			return itemError(ErrNotListed, item)
		}
		if payment.LessThan(listing.Price) {
			return &PreconditionError{Err: ErrPriceNotMet, Item: item, Account: buyer, Price: listing.Price, Payment: payment}
		}
		if l.nested(ctx) {
			return &PreconditionError{Err: ErrReentrant, Item: item, Account: buyer}
		}

		// Listing and proceeds are settled before the registry is called so a
		// re-entrant Buy finds nothing left to buy.
		l.book.removeListing(item)
		l.book.setBalance(listing.Seller, l.book.balance(listing.Seller).Add(payment))

		if err := l.registry.Transfer(ctx, l.operator, item, listing.Seller, buyer); err != nil {
			return fmt.Errorf("transfer %s: %w", item, err)
		}

		l.book.emit(domain.Event{
			Type:       domain.EventItemBought,
			Seller:     listing.Seller,
			Buyer:      buyer,
			Collection: item.Collection,
			ItemID:     item.ItemID,
			Price:      listing.Price,
		})
		return nil
	})
}

// Withdraw releases the caller's whole balance.
func (l *Ledger) Withdraw(ctx context.Context, caller domain.Address) error {
	return l.execute(ctx, "withdraw", func(ctx context.Context) error {
		amount := l.book.balance(caller)
		if amount.Sign() <= 0 {
			return &PreconditionError{Err: ErrNoProceeds, Account: caller}
		}
		if l.nested(ctx) {
			return &PreconditionError{Err: ErrReentrant, Account: caller}
		}

		l.book.setBalance(caller, decimal.Zero)

		if err := l.funds.Release(ctx, caller, amount); err != nil {
			return fmt.Errorf("release %s to %s: %w", amount, caller, err)
		}

		l.book.emit(domain.Event{
			Type:   domain.EventProceedsWithdrawn,
			Seller: caller,
			Price:  amount,
		})
		return nil
	})
}

// GetListing returns the active listing for item or the zero Listing.
func (l *Ledger) GetListing(ctx context.Context, item domain.ItemKey) domain.Listing {
	var listing domain.Listing
	l.read(ctx, func() {
		listing, _ = l.book.listing(item)
	})
	return listing
}

// GetProceeds returns the seller's withdrawable balance.
func (l *Ledger) GetProceeds(ctx context.Context, seller domain.Address) decimal.Decimal {
	var balance decimal.Decimal
	l.read(ctx, func() {
		balance = l.book.balance(seller)
	})
	return balance
}

// Seq returns the seq of the last committed operation.
func (l *Ledger) Seq() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.seq
}

// Commits returns the commit queue, nil unless WithCommitQueue was given.
func (l *Ledger) Commits() <-chan domain.Commit {
	return l.commits
}

// Close rejects further mutations and closes the commit queue.
func (l *Ledger) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.closed = true
	if l.commits != nil {
		close(l.commits)
	}
}

func (l *Ledger) sellerListing(caller domain.Address, item domain.ItemKey) (domain.Listing, error) {
	listing, ok := l.book.listing(item)
	if !ok {
		return domain.Listing{}, itemError(ErrNotListed, item)
	}
	if listing.Seller != caller {
		return domain.Listing{}, &PreconditionError{Err: ErrNotOwner, Item: item, Account: caller}
	}
	return listing, nil
}

type (
	opKey     struct{}
	nestedKey struct{}
)

func (l *Ledger) reentrant(ctx context.Context) bool {
	owner, _ := ctx.Value(opKey{}).(*Ledger)
	return owner == l
}

// nested reports whether fn is running as a re-entrant call. Buy and
// Withdraw do not move value there; the outer operation may still revert.
func (l *Ledger) nested(ctx context.Context) bool {
	owner, _ := ctx.Value(nestedKey{}).(*Ledger)
	return owner == l
}

// execute runs fn atomically. Outermost calls take the mutex and commit;
// re-entrant calls only get their own snapshot so a failure reverts just
// their effects.
func (l *Ledger) execute(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	if l.reentrant(ctx) {
		ctx = context.WithValue(ctx, nestedKey{}, l)
		snap := l.book.snapshot()
		if err := fn(ctx); err != nil {
			l.book.revert(snap)
			return err
		}
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return ErrClosed
	}

	ctx = context.WithValue(ctx, opKey{}, l)
	snap := l.book.snapshot()
	if err := fn(ctx); err != nil {
		l.book.revert(snap)
		l.book.reset()
		l.logger.Debug("ledger operation rejected", "op", op, "error", err)
		return err
	}

	l.seq++
	commit := l.book.flush(l.seq, l.now())
	if l.commits != nil {
		l.commits <- commit
	}
	return nil
}

func (l *Ledger) read(ctx context.Context, fn func()) {
	if l.reentrant(ctx) {
		fn()
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	fn()
}
