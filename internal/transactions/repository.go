package transactions

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// --------------------------------------------------
// Create all transactions of one order
// --------------------------------------------------
func (r *Repository) CreateBatch(ctx context.Context, txns []Transaction) error {
	batch := &pgx.Batch{}
	for i := range txns {
		item, err := json.Marshal(txns[i].Item)
		if err != nil {
			return fmt.Errorf("encode item for %s: %w", txns[i].TransactionID, err)
		}
		batch.Queue(`
			INSERT INTO transactions (
				transaction_id,
				user_id,
				restaurant_id,
				order_id,
				item,
				item_name,
				paid_price,
				policy_id,
				status,
				created_at
			)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		`,
			txns[i].TransactionID,
			txns[i].UserID,
			txns[i].RestaurantID,
			txns[i].OrderID,
			item,
			txns[i].ItemName,
			txns[i].PaidPrice,
			txns[i].PolicyID,
			txns[i].Status,
			txns[i].CreatedAt,
		)
	}

	results := r.db.SendBatch(ctx, batch)
	defer results.Close()
	for range txns {
		if _, err := results.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// --------------------------------------------------
// Fetch transactions by id for one user
// --------------------------------------------------
func (r *Repository) GetForUser(ctx context.Context, userID string, transactionIDs []string) ([]Transaction, error) {
	query := `
		SELECT
			transaction_id,
			user_id,
			restaurant_id,
			order_id,
			item,
			item_name,
			paid_price,
			policy_id,
			status,
			created_at,
			redeemed_at
		FROM transactions
		WHERE user_id = $1 AND transaction_id = ANY($2)
		ORDER BY created_at, transaction_id
	`

	rows, err := r.db.Query(ctx, query, userID, transactionIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txns []Transaction

	for rows.Next() {
		var (
			t    Transaction
			item []byte
		)
		if err := rows.Scan(
			&t.TransactionID,
			&t.UserID,
			&t.RestaurantID,
			&t.OrderID,
			&item,
			&t.ItemName,
			&t.PaidPrice,
			&t.PolicyID,
			&t.Status,
			&t.CreatedAt,
			&t.RedeemedAt,
		); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(item, &t.Item); err != nil {
			return nil, fmt.Errorf("decode item for %s: %w", t.TransactionID, err)
		}
		txns = append(txns, t)
	}

	return txns, rows.Err()
}

// --------------------------------------------------
// List a user's transactions at one restaurant
// --------------------------------------------------

// ListForRestaurant returns a user's transactions newest-first,
// optionally only the unredeemed ones.
func (r *Repository) ListForRestaurant(ctx context.Context, userID, restaurantID string, unredeemedOnly bool) ([]Transaction, error) {
	query := `
		SELECT
			transaction_id,
			user_id,
			restaurant_id,
			order_id,
			item,
			item_name,
			paid_price,
			policy_id,
			status,
			created_at,
			redeemed_at
		FROM transactions
		WHERE user_id = $1 AND restaurant_id = $2
	`
	if unredeemedOnly {
		query += ` AND status = 'PURCHASED'`
	}
	query += ` ORDER BY created_at DESC, transaction_id`

	rows, err := r.db.Query(ctx, query, userID, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txns []Transaction

	for rows.Next() {
		var (
			t    Transaction
			item []byte
		)
		if err := rows.Scan(
			&t.TransactionID,
			&t.UserID,
			&t.RestaurantID,
			&t.OrderID,
			&item,
			&t.ItemName,
			&t.PaidPrice,
			&t.PolicyID,
			&t.Status,
			&t.CreatedAt,
			&t.RedeemedAt,
		); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(item, &t.Item); err != nil {
			return nil, fmt.Errorf("decode item for %s: %w", t.TransactionID, err)
		}
		txns = append(txns, t)
	}

	return txns, rows.Err()
}

// --------------------------------------------------
// Mark transactions redeemed
// --------------------------------------------------

// MarkRedeemed flips the given transactions to REDEEMED and returns
// how many rows actually changed; already-redeemed rows do not count.
func (r *Repository) MarkRedeemed(ctx context.Context, userID string, transactionIDs []string, at time.Time) (int, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE transactions
		SET status = $1, redeemed_at = $2
		WHERE user_id = $3
		  AND transaction_id = ANY($4)
		  AND status = $5
	`, StatusRedeemed, at, userID, transactionIDs, StatusPurchased)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

// --------------------------------------------------
// Per-policy usage facts for eligibility
// --------------------------------------------------
func (r *Repository) PolicyUsage(ctx context.Context, userID, restaurantID string) (map[string]UsageRow, error) {
	query := `
		SELECT policy_id, COUNT(*), MAX(created_at)
		FROM transactions
		WHERE user_id = $1 AND restaurant_id = $2 AND policy_id IS NOT NULL
		GROUP BY policy_id
	`

	rows, err := r.db.Query(ctx, query, userID, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	usage := make(map[string]UsageRow)

	for rows.Next() {
		var (
			policyID string
			row      UsageRow
		)
		if err := rows.Scan(&policyID, &row.Count, &row.LastUsed); err != nil {
			return nil, err
		}
		usage[policyID] = row
	}

	return usage, rows.Err()
}

// UsageRow mirrors policy.Usage without importing it; the checkout
// service converts.
type UsageRow struct {
	Count    int
	LastUsed *time.Time
}
