package restaurant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("restaurant not found")

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// --------------------------------------------------
// Get one restaurant with its full menu tree
// --------------------------------------------------
func (r *PostgresRepository) Get(ctx context.Context, restaurantID string) (*Restaurant, error) {
	query := `
		SELECT
			id,
			name,
			menu,
			label_map,
			metadata,
			info,
			created_at
		FROM restaurants
		WHERE id = $1
	`

	var (
		res      Restaurant
		menu     []byte
		labelMap []byte
		metadata []byte
		info     []byte
	)

	err := r.db.QueryRow(ctx, query, restaurantID).Scan(
		&res.ID,
		&res.Name,
		&menu,
		&labelMap,
		&metadata,
		&info,
		&res.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := decodeColumns(&res, menu, labelMap, metadata, info); err != nil {
		return nil, err
	}
	return &res, nil
}

// --------------------------------------------------
// List all restaurants
// --------------------------------------------------
func (r *PostgresRepository) List(ctx context.Context) ([]*Restaurant, error) {
	query := `
		SELECT
			id,
			name,
			menu,
			label_map,
			metadata,
			info,
			created_at
		FROM restaurants
		ORDER BY name
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var restaurants []*Restaurant

	for rows.Next() {
		var (
			res      Restaurant
			menu     []byte
			labelMap []byte
			metadata []byte
			info     []byte
		)
		if err := rows.Scan(
			&res.ID,
			&res.Name,
			&menu,
			&labelMap,
			&metadata,
			&info,
			&res.CreatedAt,
		); err != nil {
			return nil, err
		}
		if err := decodeColumns(&res, menu, labelMap, metadata, info); err != nil {
			return nil, err
		}
		restaurants = append(restaurants, &res)
	}

	return restaurants, rows.Err()
}

func decodeColumns(res *Restaurant, menu, labelMap, metadata, info []byte) error {
	if err := json.Unmarshal(menu, &res.Menu); err != nil {
		return fmt.Errorf("decode menu for %s: %w", res.ID, err)
	}
	if err := json.Unmarshal(labelMap, &res.LabelMap); err != nil {
		return fmt.Errorf("decode label map for %s: %w", res.ID, err)
	}
	if err := json.Unmarshal(metadata, &res.Metadata); err != nil {
		return fmt.Errorf("decode metadata for %s: %w", res.ID, err)
	}
	if err := json.Unmarshal(info, &res.Info); err != nil {
		return fmt.Errorf("decode info for %s: %w", res.ID, err)
	}
	return nil
}
