package loyalty

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Balance is a user's standing with one restaurant: loyalty points
// and stored credit.
type Balance struct {
	UserID       string          `json:"user_id"`
	RestaurantID string          `json:"restaurant_id"`
	Points       int             `json:"points"`
	Credit       decimal.Decimal `json:"credit"`
}

var ErrInsufficientCredit = errors.New("insufficient credit")

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// --------------------------------------------------
// Get balance (zero-valued when no row exists yet)
// --------------------------------------------------
func (r *Repository) Get(ctx context.Context, userID, restaurantID string) (Balance, error) {
	b := Balance{
		UserID:       userID,
		RestaurantID: restaurantID,
		Credit:       decimal.Zero,
	}

	err := r.db.QueryRow(ctx, `
		SELECT points, credit
		FROM user_loyalty
		WHERE user_id = $1 AND restaurant_id = $2
	`, userID, restaurantID).Scan(&b.Points, &b.Credit)
	if errors.Is(err, pgx.ErrNoRows) {
		return b, nil
	}
	if err != nil {
		return Balance{}, err
	}
	return b, nil
}

// --------------------------------------------------
// Apply one checkout's loyalty movement atomically
// --------------------------------------------------

// Apply adjusts a balance by the outcome of a checkout: points earned
// minus points spent, credit granted minus credit used. The credit
// floor guards against racing checkouts spending the same credit.
func (r *Repository) Apply(ctx context.Context, userID, restaurantID string, pointsDelta int, creditDelta decimal.Decimal) error {
	tag, err := r.db.Exec(ctx, `
		INSERT INTO user_loyalty (user_id, restaurant_id, points, credit)
		VALUES ($1, $2, GREATEST($3, 0), GREATEST($4, 0))
		ON CONFLICT (user_id, restaurant_id) DO UPDATE SET
			points = user_loyalty.points + $3,
			credit = user_loyalty.credit + $4
		WHERE user_loyalty.points + $3 >= 0
		  AND user_loyalty.credit + $4 >= 0
	`, userID, restaurantID, pointsDelta, creditDelta)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrInsufficientCredit
	}
	return nil
}
