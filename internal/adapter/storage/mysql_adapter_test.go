package storage

import (
	"context"
	"database/sql"
	"os"
	"testing"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rl1809/nft-marketplace/internal/core/domain"
)

func getMySQLDB(t *testing.T) *sql.DB {
	dsn := os.Getenv("MYSQL_DSN")
	if dsn == "" {
		dsn = "root:root@tcp(localhost:3306)/marketplace?parseTime=true"
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Skipf("MySQL not available: %v", err)
	}

	if err := db.Ping(); err != nil {
		t.Skipf("MySQL not available: %v", err)
	}

	return db
}

func newMySQLAdapter(t *testing.T) (*MySQLAdapter, *sql.DB) {
	db := getMySQLDB(t)
	adapter := NewMySQLAdapter(db)
	if err := adapter.EnsureSchema(context.Background()); err != nil {
		db.Close()
		t.Fatalf("schema setup failed: %v", err)
	}
	return adapter, db
}

func TestMySQLApplyCommit_LoadState(t *testing.T) {
	adapter, db := newMySQLAdapter(t)
	defer db.Close()

	ctx := context.Background()
	collection := domain.Address("0xtest-" + uuid.NewString()[:8])
	seller := domain.Address("0xseller-" + uuid.NewString()[:8])
	key := domain.ItemKey{Collection: collection, ItemID: 42}
	defer func() {
		db.ExecContext(ctx, `DELETE FROM listings WHERE collection = ?`, string(collection))
		db.ExecContext(ctx, `DELETE FROM proceeds WHERE seller = ?`, string(seller))
	}()

	err := adapter.ApplyCommit(ctx, domain.Commit{
		Seq:      1_000_001,
		Listings: []domain.ListingChange{{Key: key, Listing: domain.Listing{Seller: seller, Price: decimal.NewFromInt(900)}}},
	})
	if err != nil {
		t.Fatalf("ApplyCommit failed: %v", err)
	}

	st, err := adapter.LoadState(ctx)
	if err != nil {
		t.Fatalf("LoadState failed: %v", err)
	}
	got, ok := st.Listings[key]
	if !ok {
		t.Fatal("listing not loaded")
	}
	if got.Seller != seller || !got.Price.Equal(decimal.NewFromInt(900)) {
		t.Errorf("unexpected listing %+v", got)
	}
	if st.Seq < 1_000_001 {
		t.Errorf("expected seq >= 1000001, got %d", st.Seq)
	}

	// sale removes the listing and credits the seller
	err = adapter.ApplyCommit(ctx, domain.Commit{
		Seq:      1_000_002,
		Listings: []domain.ListingChange{{Key: key}},
		Proceeds: []domain.ProceedsChange{{Seller: seller, Balance: decimal.NewFromInt(900)}},
	})
	if err != nil {
		t.Fatalf("ApplyCommit failed: %v", err)
	}

	st, _ = adapter.LoadState(ctx)
	if _, ok := st.Listings[key]; ok {
		t.Error("sold listing must not be loaded")
	}
	if bal := st.Proceeds[seller]; !bal.Equal(decimal.NewFromInt(900)) {
		t.Errorf("expected balance 900, got %s", bal)
	}
}

func TestMySQLApplyCommit_StaleSeqIgnored(t *testing.T) {
	adapter, db := newMySQLAdapter(t)
	defer db.Close()

	ctx := context.Background()
	seller := domain.Address("0xseller-" + uuid.NewString()[:8])
	defer db.ExecContext(ctx, `DELETE FROM proceeds WHERE seller = ?`, string(seller))

	newer := domain.Commit{Seq: 20, Proceeds: []domain.ProceedsChange{{Seller: seller, Balance: decimal.Zero}}}
	older := domain.Commit{Seq: 19, Proceeds: []domain.ProceedsChange{{Seller: seller, Balance: decimal.NewFromInt(300)}}}

	// workers may finish out of order
	if err := adapter.ApplyCommit(ctx, newer); err != nil {
		t.Fatalf("ApplyCommit failed: %v", err)
	}
	if err := adapter.ApplyCommit(ctx, older); err != nil {
		t.Fatalf("ApplyCommit failed: %v", err)
	}

	var balance string
	var seq uint64
	db.QueryRowContext(ctx, `SELECT balance, seq FROM proceeds WHERE seller = ?`, string(seller)).Scan(&balance, &seq)
	if balance != "0" || seq != 20 {
		t.Errorf("expected balance 0 at seq 20, got %s at %d", balance, seq)
	}
}

func TestMySQLApplyCommit_WideAmounts(t *testing.T) {
	adapter, db := newMySQLAdapter(t)
	defer db.Close()

	ctx := context.Background()
	collection := domain.Address("0xtest-" + uuid.NewString()[:8])
	seller := domain.Address("0xseller-" + uuid.NewString()[:8])
	key := domain.ItemKey{Collection: collection, ItemID: 1<<64 - 1}
	accumulated := domain.MaxAmount.Mul(decimal.NewFromInt(1_000_000))
	defer func() {
		db.ExecContext(ctx, `DELETE FROM listings WHERE collection = ?`, string(collection))
		db.ExecContext(ctx, `DELETE FROM proceeds WHERE seller = ?`, string(seller))
	}()

	err := adapter.ApplyCommit(ctx, domain.Commit{
		Seq:      1,
		Listings: []domain.ListingChange{{Key: key, Listing: domain.Listing{Seller: seller, Price: domain.MaxAmount}}},
		Proceeds: []domain.ProceedsChange{{Seller: seller, Balance: accumulated}},
	})
	if err != nil {
		t.Fatalf("ApplyCommit failed: %v", err)
	}

	st, err := adapter.LoadState(ctx)
	if err != nil {
		t.Fatalf("LoadState failed: %v", err)
	}
	if got := st.Listings[key]; !got.Price.Equal(domain.MaxAmount) {
		t.Errorf("expected price %s, got %s", domain.MaxAmount, got.Price)
	}
	if bal := st.Proceeds[seller]; !bal.Equal(accumulated) {
		t.Errorf("expected balance %s, got %s", accumulated, bal)
	}
}
