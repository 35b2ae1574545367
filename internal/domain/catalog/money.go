package catalog

import (
	"fmt"
	"math"
	"strings"

	"github.com/yungbote/baseapi-backend/internal/domain/aggregates"
)

const DefaultCurrency = "USD"

// Money is an amount in a single currency. Amounts are kept at cent precision.
type Money struct {
	Amount   float64
	Currency string
}

func NewMoney(amount float64, currency string) (Money, error) {
	if amount < 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return Money{}, aggregates.ValidationError("money.new", "amount cannot be negative")
	}
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		currency = DefaultCurrency
	}
	if len(currency) != 3 {
		return Money{}, aggregates.ValidationError("money.new", "currency must be a 3-letter code")
	}
	return Money{Amount: roundCents(amount), Currency: currency}, nil
}

func (m Money) Add(other Money) (Money, error) {
	if m.Currency != other.Currency {
		return Money{}, aggregates.ValidationError("money.add", "cannot add money with different currencies")
	}
	return NewMoney(m.Amount+other.Amount, m.Currency)
}

func (m Money) Sub(other Money) (Money, error) {
	if m.Currency != other.Currency {
		return Money{}, aggregates.ValidationError("money.sub", "cannot subtract money with different currencies")
	}
	return NewMoney(m.Amount-other.Amount, m.Currency)
}

func (m Money) Mul(factor float64) (Money, error) {
	return NewMoney(m.Amount*factor, m.Currency)
}

func (m Money) Equal(other Money) bool {
	return m.Currency == other.Currency && roundCents(m.Amount) == roundCents(other.Amount)
}

func (m Money) String() string {
	return fmt.Sprintf("%.2f %s", m.Amount, m.Currency)
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
