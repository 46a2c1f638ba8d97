// Package ledger implements the marketplace listing and proceeds ledger.
//
// All operations run in a single total order guarded by the ledger mutex.
// The asset registry (during Buy) and the funds releaser (during Withdraw)
// may re-enter the ledger synchronously with the context they were given;
// a re-entrant call runs inside the outer operation without taking the
// mutex again. Re-entry from another goroutine is not supported.
// A re-entrant Buy or Withdraw that passes its checks is rejected with
// ErrReentrant, since its transfer or release would outlive a revert of
// the outer operation.
//
// Every operation is atomic. Effects are journaled and reverted when the
// operation fails, including effects of re-entrant calls it contained.
// Events and the persistence changeset leave the ledger only when the
// outermost operation succeeds.
package ledger
