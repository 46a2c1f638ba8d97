package storage

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/rl1809/nft-marketplace/internal/core/domain"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS listings (
	collection TEXT           NOT NULL,
	item_id    NUMERIC(20,0)  NOT NULL,
	seller     TEXT           NOT NULL,
	price      NUMERIC(100,0) NOT NULL,
	seq        BIGINT         NOT NULL,
	updated_at TIMESTAMPTZ    NOT NULL DEFAULT now(),
	PRIMARY KEY (collection, item_id)
);
CREATE TABLE IF NOT EXISTS proceeds (
	seller     TEXT           PRIMARY KEY,
	balance    NUMERIC(100,0) NOT NULL,
	seq        BIGINT         NOT NULL,
	updated_at TIMESTAMPTZ    NOT NULL DEFAULT now()
)`

// PostgresAdapter is the pgx backed LedgerRepository. Numeric columns travel
// as text so amounts beyond int64 survive the round trip.
type PostgresAdapter struct {
	pool *pgxpool.Pool
}

func NewPostgresAdapter(pool *pgxpool.Pool) *PostgresAdapter {
	return &PostgresAdapter{pool: pool}
}

// EnsureSchema creates the tables when missing.
func (p *PostgresAdapter) EnsureSchema(ctx context.Context) error {
	for _, stmt := range splitStatements(postgresSchema) {
		if _, err := p.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}

func (p *PostgresAdapter) LoadState(ctx context.Context) (domain.State, error) {
	st := domain.State{
		Listings: make(map[domain.ItemKey]domain.Listing),
		Proceeds: make(map[domain.Address]decimal.Decimal),
	}

	rows, err := p.pool.Query(ctx, `
		SELECT collection, item_id::text, seller, price::text, seq
		FROM listings`)
	if err != nil {
		return st, fmt.Errorf("query listings: %w", err)
	}
	for rows.Next() {
		var (
			collection, itemID, seller, price string
			seq                               int64
		)
		if err := rows.Scan(&collection, &itemID, &seller, &price, &seq); err != nil {
			rows.Close()
			return st, fmt.Errorf("scan listing: %w", err)
		}
		id, err := strconv.ParseUint(itemID, 10, 64)
		if err != nil {
			rows.Close()
			return st, fmt.Errorf("parse item id %q: %w", itemID, err)
		}
		amount, err := decimal.NewFromString(price)
		if err != nil {
			rows.Close()
			return st, fmt.Errorf("parse price %q: %w", price, err)
		}
		st.Seq = max(st.Seq, uint64(seq))
		if amount.Sign() > 0 {
			key := domain.ItemKey{Collection: domain.Address(collection), ItemID: id}
			st.Listings[key] = domain.Listing{Seller: domain.Address(seller), Price: amount}
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return st, fmt.Errorf("iterate listings: %w", err)
	}

	prows, err := p.pool.Query(ctx, `SELECT seller, balance::text, seq FROM proceeds`)
	if err != nil {
		return st, fmt.Errorf("query proceeds: %w", err)
	}
	defer prows.Close()

	for prows.Next() {
		var (
			seller, balance string
			seq             int64
		)
		if err := prows.Scan(&seller, &balance, &seq); err != nil {
			return st, fmt.Errorf("scan proceeds: %w", err)
		}
		amount, err := decimal.NewFromString(balance)
		if err != nil {
			return st, fmt.Errorf("parse balance %q: %w", balance, err)
		}
		st.Seq = max(st.Seq, uint64(seq))
		if amount.Sign() > 0 {
			st.Proceeds[domain.Address(seller)] = amount
		}
	}
	if err := prows.Err(); err != nil {
		return st, fmt.Errorf("iterate proceeds: %w", err)
	}

	return st, nil
}

// ApplyCommit sends the changeset as one batch inside a transaction.
func (p *PostgresAdapter) ApplyCommit(ctx context.Context, commit domain.Commit) error {
	batch := &pgx.Batch{}
	seq := int64(commit.Seq)

	for _, c := range commit.Listings {
		batch.Queue(`
			INSERT INTO listings (collection, item_id, seller, price, seq, updated_at)
			VALUES ($1, $2::numeric, $3, $4::numeric, $5, now())
			ON CONFLICT (collection, item_id) DO UPDATE
			SET seller = EXCLUDED.seller, price = EXCLUDED.price, seq = EXCLUDED.seq, updated_at = EXCLUDED.updated_at
			WHERE listings.seq < EXCLUDED.seq
		`, string(c.Key.Collection), strconv.FormatUint(c.Key.ItemID, 10), string(c.Listing.Seller), c.Listing.Price.String(), seq)
	}
	for _, c := range commit.Proceeds {
		batch.Queue(`
			INSERT INTO proceeds (seller, balance, seq, updated_at)
			VALUES ($1, $2::numeric, $3, now())
			ON CONFLICT (seller) DO UPDATE
			SET balance = EXCLUDED.balance, seq = EXCLUDED.seq, updated_at = EXCLUDED.updated_at
			WHERE proceeds.seq < EXCLUDED.seq
		`, string(c.Seller), c.Balance.String(), seq)
	}
	if batch.Len() == 0 {
		return nil
	}

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	results := tx.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return fmt.Errorf("apply commit %d: %w", commit.Seq, err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("close batch: %w", err)
	}

	return tx.Commit(ctx)
}
