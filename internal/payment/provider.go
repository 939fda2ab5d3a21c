package payment

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// LocalIntentProvider stands in for a real gateway: it mints a client secret
// without talking to anyone. Useful for development and tests.
type LocalIntentProvider struct{}

func (LocalIntentProvider) CreateIntent(_ context.Context, amount float64, currency string) (string, error) {
	if amount <= 0 {
		return "", fmt.Errorf("invalid amount %v", amount)
	}
	return fmt.Sprintf("pi_%s_secret_%s", currency, uuid.NewString()), nil
}
