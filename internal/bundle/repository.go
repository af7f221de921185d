package bundle

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("bundle not found")

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// --------------------------------------------------
// List bundles for a restaurant (with child policies)
// --------------------------------------------------
func (r *Repository) ListByRestaurant(ctx context.Context, restaurantID string) ([]Bundle, error) {
	query := `
		SELECT
			b.bundle_id,
			b.restaurant_id,
			b.name,
			b.price,
			b.duration,
			b.fixed_credit,
			b.point_multiplier,
			b.deactivated_at,
			COALESCE(array_agg(bp.policy_id) FILTER (WHERE bp.policy_id IS NOT NULL), '{}')
		FROM bundles b
		LEFT JOIN bundle_policies bp ON bp.bundle_id = b.bundle_id
		WHERE b.restaurant_id = $1
		GROUP BY b.bundle_id
		ORDER BY b.name
	`

	rows, err := r.db.Query(ctx, query, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bundles []Bundle

	for rows.Next() {
		var b Bundle
		if err := rows.Scan(
			&b.BundleID,
			&b.RestaurantID,
			&b.Name,
			&b.Price,
			&b.Duration,
			&b.FixedCredit,
			&b.PointMultiplier,
			&b.DeactivatedAt,
			&b.PolicyIDs,
		); err != nil {
			return nil, err
		}
		bundles = append(bundles, b)
	}

	return bundles, rows.Err()
}

// --------------------------------------------------
// Get one bundle
// --------------------------------------------------
func (r *Repository) Get(ctx context.Context, bundleID string) (*Bundle, error) {
	query := `
		SELECT
			b.bundle_id,
			b.restaurant_id,
			b.name,
			b.price,
			b.duration,
			b.fixed_credit,
			b.point_multiplier,
			b.deactivated_at,
			COALESCE(array_agg(bp.policy_id) FILTER (WHERE bp.policy_id IS NOT NULL), '{}')
		FROM bundles b
		LEFT JOIN bundle_policies bp ON bp.bundle_id = b.bundle_id
		WHERE b.bundle_id = $1
		GROUP BY b.bundle_id
	`

	var b Bundle
	err := r.db.QueryRow(ctx, query, bundleID).Scan(
		&b.BundleID,
		&b.RestaurantID,
		&b.Name,
		&b.Price,
		&b.Duration,
		&b.FixedCredit,
		&b.PointMultiplier,
		&b.DeactivatedAt,
		&b.PolicyIDs,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// --------------------------------------------------
// Ownership facts
// --------------------------------------------------
func (r *Repository) ListOwnership(ctx context.Context, userID, restaurantID string) ([]Ownership, error) {
	query := `
		SELECT o.user_id, o.bundle_id, o.purchased_at
		FROM bundle_ownership o
		JOIN bundles b ON b.bundle_id = o.bundle_id
		WHERE o.user_id = $1 AND b.restaurant_id = $2
		ORDER BY o.purchased_at
	`

	rows, err := r.db.Query(ctx, query, userID, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var owned []Ownership

	for rows.Next() {
		var o Ownership
		if err := rows.Scan(&o.UserID, &o.BundleID, &o.PurchasedAt); err != nil {
			return nil, err
		}
		owned = append(owned, o)
	}

	return owned, rows.Err()
}

// RecordOwnership marks a bundle as purchased by a user. A repeat
// purchase restarts the validity window.
func (r *Repository) RecordOwnership(ctx context.Context, userID, bundleID string, purchasedAt time.Time) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO bundle_ownership (user_id, bundle_id, purchased_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, bundle_id) DO UPDATE SET purchased_at = EXCLUDED.purchased_at
	`, userID, bundleID, purchasedAt)
	return err
}
