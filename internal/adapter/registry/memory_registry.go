package registry

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rl1809/nft-marketplace/internal/core/domain"
)

var (
	ErrItemNotFound  = errors.New("item does not exist")
	ErrItemExists    = errors.New("item already exists")
	ErrNotAuthorized = errors.New("caller is not owner nor approved")
	ErrWrongOwner    = errors.New("transfer from incorrect owner")
)

// TransferHook runs before a transfer is applied, without the registry lock
// held. A non-nil error aborts the transfer.
type TransferHook func(ctx context.Context, item domain.ItemKey, from, to domain.Address) error

type operatorKey struct {
	collection domain.Address
	owner      domain.Address
	operator   domain.Address
}

// MemoryRegistry is an in-process asset registry with per-item approvals and
// collection-wide operator delegations.
type MemoryRegistry struct {
	mu        sync.Mutex
	owners    map[domain.ItemKey]domain.Address
	approved  map[domain.ItemKey]domain.Address
	operators map[operatorKey]bool
	hook      TransferHook
}

func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{
		owners:    make(map[domain.ItemKey]domain.Address),
		approved:  make(map[domain.ItemKey]domain.Address),
		operators: make(map[operatorKey]bool),
	}
}

func (r *MemoryRegistry) Mint(item domain.ItemKey, owner domain.Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.owners[item]; ok {
		return fmt.Errorf("mint %s: %w", item, ErrItemExists)
	}
	r.owners[item] = owner
	return nil
}

// Approve lets operator move one item. An empty operator clears the approval.
func (r *MemoryRegistry) Approve(caller domain.Address, item domain.ItemKey, operator domain.Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	owner, ok := r.owners[item]
	if !ok {
		return fmt.Errorf("approve %s: %w", item, ErrItemNotFound)
	}
	if caller != owner && !r.operators[operatorKey{item.Collection, owner, caller}] {
		return fmt.Errorf("approve %s: %w", item, ErrNotAuthorized)
	}
	if operator.IsZero() {
		delete(r.approved, item)
		return nil
	}
	r.approved[item] = operator
	return nil
}

// SetApprovalForAll delegates every item owner holds in collection.
func (r *MemoryRegistry) SetApprovalForAll(owner, collection, operator domain.Address, approved bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := operatorKey{collection, owner, operator}
	if approved {
		r.operators[key] = true
	} else {
		delete(r.operators, key)
	}
}

// SetTransferHook installs fn; nil removes it.
func (r *MemoryRegistry) SetTransferHook(fn TransferHook) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hook = fn
}

func (r *MemoryRegistry) OwnerOf(ctx context.Context, item domain.ItemKey) (domain.Address, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	owner, ok := r.owners[item]
	if !ok {
		return "", fmt.Errorf("owner of %s: %w", item, ErrItemNotFound)
	}
	return owner, nil
}

func (r *MemoryRegistry) IsApprovedForTransfer(ctx context.Context, item domain.ItemKey, operator domain.Address) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	owner, ok := r.owners[item]
	if !ok {
		return false, fmt.Errorf("approval of %s: %w", item, ErrItemNotFound)
	}
	return r.canMove(owner, item, operator), nil
}

func (r *MemoryRegistry) Transfer(ctx context.Context, operator domain.Address, item domain.ItemKey, from, to domain.Address) error {
	r.mu.Lock()
	hook := r.hook
	r.mu.Unlock()

	if hook != nil {
		if err := hook(ctx, item, from, to); err != nil {
			return err
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	owner, ok := r.owners[item]
	if !ok {
		return fmt.Errorf("transfer %s: %w", item, ErrItemNotFound)
	}
	if owner != from {
		return fmt.Errorf("transfer %s: %w", item, ErrWrongOwner)
	}
	if !r.canMove(owner, item, operator) {
		return fmt.Errorf("transfer %s: %w", item, ErrNotAuthorized)
	}

	delete(r.approved, item)
	r.owners[item] = to
	return nil
}

// canMove must be called with the lock held.
func (r *MemoryRegistry) canMove(owner domain.Address, item domain.ItemKey, operator domain.Address) bool {
	return operator == owner ||
		r.approved[item] == operator ||
		r.operators[operatorKey{item.Collection, owner, operator}]
}
