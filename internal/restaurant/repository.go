package restaurant

import "context"

type Repository interface {
	Get(ctx context.Context, restaurantID string) (*Restaurant, error)
	List(ctx context.Context) ([]*Restaurant, error)
}
