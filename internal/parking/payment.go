package parking

import (
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"
)

// FeeCalculator prices an occupancy of the given length.
type FeeCalculator interface {
	Fee(elapsed time.Duration, hourlyRate float64) float64
}

// HourlyFee charges a flat rate per hour, pro rata to the second.
type HourlyFee struct{}

func (HourlyFee) Fee(elapsed time.Duration, hourlyRate float64) float64 {
	hours := elapsed.Seconds() / 3600
	return math.Max(0, hours*hourlyRate)
}

type PaymentMethod int

const (
	CreditCard PaymentMethod = iota
	DebitCard
	Cash
	MobileApp
)

var PaymentMethods = []PaymentMethod{CreditCard, DebitCard, Cash, MobileApp}

func (m PaymentMethod) String() string {
	switch m {
	case CreditCard:
		return "credit_card"
	case DebitCard:
		return "debit_card"
	case Cash:
		return "cash"
	case MobileApp:
		return "mobile_app"
	default:
		return fmt.Sprintf("method(%d)", int(m))
	}
}

func ParsePaymentMethod(value string) (PaymentMethod, error) {
	normalized := strings.ReplaceAll(strings.ToLower(value), "-", "_")
	for _, m := range PaymentMethods {
		if normalized == m.String() {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown payment method %q", value)
}

// PaymentSettler collects amount using method. A non-nil error means the
// payment was declined and nothing was charged.
type PaymentSettler interface {
	Settle(amount float64, method PaymentMethod) error
}

// SettlerFunc adapts a plain function to PaymentSettler.
type SettlerFunc func(amount float64, method PaymentMethod) error

func (f SettlerFunc) Settle(amount float64, method PaymentMethod) error {
	return f(amount, method)
}

// SimulatedSettler stands in for a payment gateway. It accepts every
// non-negative amount unless the method has been marked as declined.
type SimulatedSettler struct {
	declined map[PaymentMethod]bool
	logger   *slog.Logger
}

func NewSimulatedSettler(logger *slog.Logger, declined ...PaymentMethod) *SimulatedSettler {
	if logger == nil {
		logger = slog.Default()
	}
	s := &SimulatedSettler{
		declined: make(map[PaymentMethod]bool, len(declined)),
		logger:   logger,
	}
	for _, m := range declined {
		s.declined[m] = true
	}
	return s
}

func (s *SimulatedSettler) Settle(amount float64, method PaymentMethod) error {
	s.logger.Info("processing payment",
		slog.Float64("amount", amount),
		slog.String("method", method.String()),
	)

	if amount < 0 {
		return fmt.Errorf("amount must not be negative: %.2f", amount)
	}
	if s.declined[method] {
		return fmt.Errorf("%s declined", method)
	}
	return nil
}
