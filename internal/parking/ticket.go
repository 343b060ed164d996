package parking

import "time"

// Ticket records an in-progress occupancy. It lives in the facility's
// active-ticket table for exactly as long as its spot is held.
type Ticket struct {
	ID          string
	SpotID      SpotID
	Level       int
	VehicleID   string
	VehicleType VehicleType
	EntryTime   time.Time
}

// Elapsed never goes negative, even if the clock steps backwards.
func (t Ticket) Elapsed(now time.Time) time.Duration {
	elapsed := now.Sub(t.EntryTime)
	if elapsed < 0 {
		return 0
	}
	return elapsed
}

// Settlement is what a successful UnparkAndPay hands back.
type Settlement struct {
	Ticket   Ticket
	ExitTime time.Time
	Duration time.Duration
	Fee      float64
	Method   PaymentMethod
}
