package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Timeout for a single capture call; a hung processor must not hang
// checkout.
const captureTimeout = 5 * time.Second

var (
	ErrDeclined = errors.New("payment declined")
	ErrTimeout  = errors.New("payment processor timed out")
)

// Intent is a payment authorization created before the user confirms.
type Intent struct {
	IntentID string          `json:"intent_id"`
	Token    string          `json:"token"` // client secret handed to the payment sheet
	Amount   decimal.Decimal `json:"amount"`
}

// Processor is the payment collaborator. The real implementation
// wraps the external processor SDK; tests substitute their own.
type Processor interface {
	CreateIntent(ctx context.Context, amount decimal.Decimal) (*Intent, error)
	Capture(ctx context.Context, token string, amount decimal.Decimal, paymentData map[string]any) error
}

// --------------------------------------------------
// MOCK PROCESSOR (LOCAL DEV)
// --------------------------------------------------

// MockProcessor simulates the external processor: every intent
// succeeds, and captures against a card ending 0000 decline.
type MockProcessor struct{}

func NewMockProcessor() *MockProcessor {
	return &MockProcessor{}
}

func (m *MockProcessor) CreateIntent(ctx context.Context, amount decimal.Decimal) (*Intent, error) {
	if amount.IsNegative() {
		return nil, fmt.Errorf("invalid intent amount %s", amount)
	}
	return &Intent{
		IntentID: uuid.NewString(),
		Token:    "pi_" + uuid.NewString(),
		Amount:   amount,
	}, nil
}

func (m *MockProcessor) Capture(ctx context.Context, token string, amount decimal.Decimal, paymentData map[string]any) error {
	done := make(chan error, 1)
	go func() {
		if last4, _ := paymentData["last4"].(string); last4 == "0000" {
			done <- fmt.Errorf("%w: insufficient funds", ErrDeclined)
			return
		}
		done <- nil
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(captureTimeout):
		return ErrTimeout
	case <-ctx.Done():
		return ctx.Err()
	}
}
