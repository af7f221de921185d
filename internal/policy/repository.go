package policy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("policy not found")

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// --------------------------------------------------
// List policies for a restaurant
// --------------------------------------------------
func (r *Repository) ListByRestaurant(ctx context.Context, restaurantID string) ([]Policy, error) {
	query := `
		SELECT
			policy_id,
			name,
			header,
			locked,
			active,
			definition,
			total_usages,
			days_since_last_use,
			begin_time,
			end_time
		FROM policies
		WHERE restaurant_id = $1
		ORDER BY created_at, policy_id
	`

	rows, err := r.db.Query(ctx, query, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var policies []Policy

	for rows.Next() {
		p, err := scanPolicy(rows)
		if err != nil {
			return nil, err
		}
		policies = append(policies, p)
	}

	return policies, rows.Err()
}

// --------------------------------------------------
// Get one policy
// --------------------------------------------------
func (r *Repository) Get(ctx context.Context, policyID string) (*Policy, error) {
	query := `
		SELECT
			policy_id,
			name,
			header,
			locked,
			active,
			definition,
			total_usages,
			days_since_last_use,
			begin_time,
			end_time
		FROM policies
		WHERE policy_id = $1
	`

	row := r.db.QueryRow(ctx, query, policyID)
	p, err := scanPolicy(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// --------------------------------------------------
// Upsert (seeding and admin edits)
// --------------------------------------------------
func (r *Repository) Upsert(ctx context.Context, restaurantID string, p Policy) error {
	definition, err := json.Marshal(p.Definition)
	if err != nil {
		return fmt.Errorf("encode definition for %s: %w", p.PolicyID, err)
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO policies (
			policy_id,
			restaurant_id,
			name,
			header,
			locked,
			active,
			definition,
			total_usages,
			days_since_last_use,
			begin_time,
			end_time
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		ON CONFLICT (policy_id) DO UPDATE SET
			name = EXCLUDED.name,
			header = EXCLUDED.header,
			locked = EXCLUDED.locked,
			active = EXCLUDED.active,
			definition = EXCLUDED.definition,
			total_usages = EXCLUDED.total_usages,
			days_since_last_use = EXCLUDED.days_since_last_use,
			begin_time = EXCLUDED.begin_time,
			end_time = EXCLUDED.end_time
	`,
		p.PolicyID,
		restaurantID,
		p.Name,
		p.Header,
		p.Locked,
		p.Active,
		definition,
		p.TotalUsages,
		p.DaysSinceLastUse,
		p.BeginTime,
		p.EndTime,
	)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPolicy(row rowScanner) (Policy, error) {
	var (
		p          Policy
		definition []byte
	)
	if err := row.Scan(
		&p.PolicyID,
		&p.Name,
		&p.Header,
		&p.Locked,
		&p.Active,
		&definition,
		&p.TotalUsages,
		&p.DaysSinceLastUse,
		&p.BeginTime,
		&p.EndTime,
	); err != nil {
		return Policy{}, err
	}
	if err := json.Unmarshal(definition, &p.Definition); err != nil {
		return Policy{}, fmt.Errorf("decode definition for %s: %w", p.PolicyID, err)
	}
	return p, nil
}
