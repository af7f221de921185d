package redemption

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"tapin/internal/transactions"
)

var (
	ErrNoTransactions  = errors.New("no transactions to redeem")
	ErrAlreadyRedeemed = errors.New("transaction already redeemed")
	ErrNotOwned        = errors.New("transaction does not belong to user")
)

// Request is the redemption call contract: the transaction ids shown
// in the user's QR code plus scan metadata.
type Request struct {
	TransactionIDs []string          `json:"transactionIds"`
	RestaurantID   string            `json:"restaurant_id"`
	Metadata       map[string]string `json:"metadata,omitempty"`
}

// Response reports the outcome with the updated transactions.
type Response struct {
	Success             bool                       `json:"success"`
	UpdatedTransactions []transactions.Transaction `json:"updatedTransactions"`
}

// Store is the slice of the transactions repository redemption needs.
type Store interface {
	GetForUser(ctx context.Context, userID string, transactionIDs []string) ([]transactions.Transaction, error)
	MarkRedeemed(ctx context.Context, userID string, transactionIDs []string, at time.Time) (int, error)
}

// Service fulfills purchased units when a QR code is scanned at the
// bar. Redemption is all-or-nothing per scan.
type Service struct {
	txns Store
	now  func() time.Time
}

func NewService(txns Store) *Service {
	return &Service{txns: txns, now: time.Now}
}

// Redeem marks the given transactions fulfilled. Every id must exist,
// belong to the user, and be unredeemed; otherwise nothing changes.
func (s *Service) Redeem(ctx context.Context, userID string, req Request) (*Response, error) {
	if len(req.TransactionIDs) == 0 {
		return nil, ErrNoTransactions
	}

	owned, err := s.txns.GetForUser(ctx, userID, req.TransactionIDs)
	if err != nil {
		return nil, err
	}
	if len(owned) != len(req.TransactionIDs) {
		return nil, ErrNotOwned
	}
	for _, t := range owned {
		if t.Redeemed() {
			return nil, ErrAlreadyRedeemed
		}
		if t.RestaurantID != req.RestaurantID {
			return nil, ErrNotOwned
		}
	}

	changed, err := s.txns.MarkRedeemed(ctx, userID, req.TransactionIDs, s.now())
	if err != nil {
		return nil, err
	}
	if changed != len(req.TransactionIDs) {
		// another scan got there first
		return nil, ErrAlreadyRedeemed
	}

	updated, err := s.txns.GetForUser(ctx, userID, req.TransactionIDs)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"user":       userID,
		"restaurant": req.RestaurantID,
		"count":      len(updated),
	}).Info("transactions redeemed")

	return &Response{Success: true, UpdatedTransactions: updated}, nil
}
