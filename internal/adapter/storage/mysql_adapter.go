package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/rl1809/nft-marketplace/internal/core/domain"
)

// Amounts are stored as decimal text: accumulated balances of 2^256-1 sized
// payments do not fit DECIMAL(65,0).
const mysqlSchema = `
CREATE TABLE IF NOT EXISTS listings (
	collection VARCHAR(128)    NOT NULL,
	item_id    BIGINT UNSIGNED NOT NULL,
	seller     VARCHAR(128)    NOT NULL,
	price      VARCHAR(100)    NOT NULL,
	seq        BIGINT UNSIGNED NOT NULL,
	updated_at DATETIME(6)     NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
	PRIMARY KEY (collection, item_id)
);
CREATE TABLE IF NOT EXISTS proceeds (
	seller     VARCHAR(128)    NOT NULL PRIMARY KEY,
	balance    VARCHAR(100)    NOT NULL,
	seq        BIGINT UNSIGNED NOT NULL,
	updated_at DATETIME(6)     NOT NULL DEFAULT CURRENT_TIMESTAMP(6)
)`

// MySQLAdapter keeps a durable copy of the listing and proceeds maps.
// Removed listings and drained balances stay as zero rows so a late write
// carrying an older seq cannot resurrect them.
type MySQLAdapter struct {
	db *sql.DB
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db}
}

// EnsureSchema creates the tables when missing.
func (m *MySQLAdapter) EnsureSchema(ctx context.Context) error {
	for _, stmt := range splitStatements(mysqlSchema) {
		if _, err := m.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}

func (m *MySQLAdapter) LoadState(ctx context.Context) (domain.State, error) {
	st := domain.State{
		Listings: make(map[domain.ItemKey]domain.Listing),
		Proceeds: make(map[domain.Address]decimal.Decimal),
	}

	rows, err := m.db.QueryContext(ctx, `
		SELECT collection, item_id, seller, price, seq
		FROM listings`)
	if err != nil {
		return st, fmt.Errorf("query listings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			key     domain.ItemKey
			listing domain.Listing
			seq     uint64
		)
		if err := rows.Scan(&key.Collection, &key.ItemID, &listing.Seller, &listing.Price, &seq); err != nil {
			return st, fmt.Errorf("scan listing: %w", err)
		}
		st.Seq = max(st.Seq, seq)
		if listing.Active() {
			st.Listings[key] = listing
		}
	}
	if err := rows.Err(); err != nil {
		return st, fmt.Errorf("iterate listings: %w", err)
	}

	prows, err := m.db.QueryContext(ctx, `SELECT seller, balance, seq FROM proceeds`)
	if err != nil {
		return st, fmt.Errorf("query proceeds: %w", err)
	}
	defer prows.Close()

	for prows.Next() {
		var (
			seller  domain.Address
			balance decimal.Decimal
			seq     uint64
		)
		if err := prows.Scan(&seller, &balance, &seq); err != nil {
			return st, fmt.Errorf("scan proceeds: %w", err)
		}
		st.Seq = max(st.Seq, seq)
		if balance.Sign() > 0 {
			st.Proceeds[seller] = balance
		}
	}
	if err := prows.Err(); err != nil {
		return st, fmt.Errorf("iterate proceeds: %w", err)
	}

	return st, nil
}

// ApplyCommit upserts every changed row in one transaction. MySQL applies
// the assignments left to right so seq must be updated last.
func (m *MySQLAdapter) ApplyCommit(ctx context.Context, commit domain.Commit) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, c := range commit.Listings {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO listings (collection, item_id, seller, price, seq, updated_at)
			VALUES (?, ?, ?, ?, ?, NOW(6))
			ON DUPLICATE KEY UPDATE
				seller     = IF(VALUES(seq) > seq, VALUES(seller), seller),
				price      = IF(VALUES(seq) > seq, VALUES(price), price),
				updated_at = IF(VALUES(seq) > seq, VALUES(updated_at), updated_at),
				seq        = GREATEST(seq, VALUES(seq))`,
			string(c.Key.Collection), c.Key.ItemID, string(c.Listing.Seller), c.Listing.Price.String(), commit.Seq,
		)
		if err != nil {
			return fmt.Errorf("upsert listing %s: %w", c.Key, err)
		}
	}

	for _, c := range commit.Proceeds {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO proceeds (seller, balance, seq, updated_at)
			VALUES (?, ?, ?, NOW(6))
			ON DUPLICATE KEY UPDATE
				balance    = IF(VALUES(seq) > seq, VALUES(balance), balance),
				updated_at = IF(VALUES(seq) > seq, VALUES(updated_at), updated_at),
				seq        = GREATEST(seq, VALUES(seq))`,
			string(c.Seller), c.Balance.String(), commit.Seq,
		)
		if err != nil {
			return fmt.Errorf("upsert proceeds %s: %w", c.Seller, err)
		}
	}

	return tx.Commit()
}
