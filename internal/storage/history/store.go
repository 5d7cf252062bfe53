// Package history mirrors completed sales into a relational database for
// reporting. The key-value state remains authoritative; the mirror is
// written after the fact and may lag or miss entries.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/lib/pq" // PostgreSQL driver
	_ "modernc.org/sqlite" // SQLite driver
)

// Sale is one completed purchase.
type Sale struct {
	ListingID        uint64 `json:"listing_id"`
	BucketID         uint64 `json:"bucket_id"`
	Seller           string `json:"seller"`
	Buyer            string `json:"buyer"`
	FeeDenom         string `json:"fee_denom"`
	ListingFee       string `json:"listing_fee,omitempty"`
	BucketFee        string `json:"bucket_fee,omitempty"`
	SellerRoyaltyBps uint32 `json:"seller_royalty_bps"`
	BuyerRoyaltyBps  uint32 `json:"buyer_royalty_bps"`
	Timestamp        int64  `json:"timestamp"`
	Height           uint64 `json:"height"`
}

// Filter selects sales. Empty fields match everything.
type Filter struct {
	Seller string
	Buyer  string
	Limit  int
	Offset int
}

// DefaultLimit applies when Filter.Limit is not positive.
const DefaultLimit = 20

// executor allows using both sql.DB and sql.Tx
type executor interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// Store is a sales table in sqlite or postgres.
type Store struct {
	db     *sql.DB
	config *Config
}

// Open connects to the configured database and creates the schema.
func Open(ctx context.Context, config *Config) (*Store, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	db, err := sql.Open(config.Driver, config.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)
	db.SetConnMaxLifetime(config.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, config.DefaultTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping history database: %w", err)
	}

	s := &Store{db: db, config: config}
	if err := s.initSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *Store) initSchema(ctx context.Context) error {
	id := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if s.config.Driver == DriverPostgres {
		id = "BIGSERIAL PRIMARY KEY"
	}
	statements := []string{
		`CREATE TABLE IF NOT EXISTS sales (
			id ` + id + `,
			listing_id BIGINT NOT NULL,
			bucket_id BIGINT NOT NULL,
			seller TEXT NOT NULL,
			buyer TEXT NOT NULL,
			fee_denom TEXT NOT NULL,
			listing_fee TEXT NOT NULL DEFAULT '',
			bucket_fee TEXT NOT NULL DEFAULT '',
			seller_royalty_bps INTEGER NOT NULL DEFAULT 0,
			buyer_royalty_bps INTEGER NOT NULL DEFAULT 0,
			ts BIGINT NOT NULL,
			height BIGINT NOT NULL
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS sales_listing_idx ON sales (listing_id)`,
		`CREATE INDEX IF NOT EXISTS sales_seller_idx ON sales (seller, ts)`,
		`CREATE INDEX IF NOT EXISTS sales_buyer_idx ON sales (buyer, ts)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return newQueryError("init schema", err)
		}
	}
	return nil
}

// rebind rewrites ? placeholders as $n for postgres.
func (s *Store) rebind(query string) string {
	if s.config.Driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// RecordSale inserts a sale. Recording the same listing twice is a no-op.
func (s *Store) RecordSale(ctx context.Context, sale *Sale) error {
	if s.db == nil {
		return ErrDatabaseClosed
	}
	ctx, cancel := context.WithTimeout(ctx, s.config.DefaultTimeout)
	defer cancel()
	return s.recordSale(ctx, s.db, sale)
}

func (s *Store) recordSale(ctx context.Context, exec executor, sale *Sale) error {
	query := s.rebind(`INSERT INTO sales (listing_id, bucket_id, seller, buyer, fee_denom, listing_fee, bucket_fee,
		seller_royalty_bps, buyer_royalty_bps, ts, height)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (listing_id) DO NOTHING`)
	_, err := exec.ExecContext(ctx, query,
		int64(sale.ListingID), int64(sale.BucketID), sale.Seller, sale.Buyer, sale.FeeDenom,
		sale.ListingFee, sale.BucketFee, int64(sale.SellerRoyaltyBps), int64(sale.BuyerRoyaltyBps),
		sale.Timestamp, int64(sale.Height))
	if err != nil {
		return newQueryError("record sale", err)
	}
	return nil
}

// Sales returns sales matching filter, newest first.
func (s *Store) Sales(ctx context.Context, filter Filter) ([]*Sale, error) {
	if s.db == nil {
		return nil, ErrDatabaseClosed
	}
	ctx, cancel := context.WithTimeout(ctx, s.config.DefaultTimeout)
	defer cancel()

	var where []string
	var args []interface{}
	if filter.Seller != "" {
		where = append(where, "seller = ?")
		args = append(args, filter.Seller)
	}
	if filter.Buyer != "" {
		where = append(where, "buyer = ?")
		args = append(args, filter.Buyer)
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := `SELECT listing_id, bucket_id, seller, buyer, fee_denom, listing_fee, bucket_fee,
		seller_royalty_bps, buyer_royalty_bps, ts, height FROM sales`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY ts DESC, id DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, newQueryError("list sales", err)
	}
	defer rows.Close()

	var out []*Sale
	for rows.Next() {
		var (
			sale                      Sale
			listingID, bucketID       int64
			sellerBps, buyerBps, high int64
		)
		if err := rows.Scan(&listingID, &bucketID, &sale.Seller, &sale.Buyer, &sale.FeeDenom,
			&sale.ListingFee, &sale.BucketFee, &sellerBps, &buyerBps, &sale.Timestamp, &high); err != nil {
			return nil, newQueryError("scan sale", err)
		}
		sale.ListingID = uint64(listingID)
		sale.BucketID = uint64(bucketID)
		sale.SellerRoyaltyBps = uint32(sellerBps)
		sale.BuyerRoyaltyBps = uint32(buyerBps)
		sale.Height = uint64(high)
		out = append(out, &sale)
	}
	if err := rows.Err(); err != nil {
		return nil, newQueryError("list sales", err)
	}
	return out, nil
}
