package parking

import (
	"fmt"
	"log/slog"
	"math"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// Facility is the top-level allocator. Its mutex guards the ticket table and
// the spot index and is always taken before any Level mutex. At most one
// Level mutex is held at a time.
type Facility struct {
	mu         sync.Mutex
	levels     []*Level
	spotLevels map[SpotID]int
	tickets    map[string]*Ticket
	nextSpotID SpotID

	hourlyRate float64
	fees       FeeCalculator
	settler    PaymentSettler
	clock      Clock
	logger     *slog.Logger
}

type Option func(*Facility)

func WithFeeCalculator(fees FeeCalculator) Option {
	return func(f *Facility) {
		f.fees = fees
	}
}

func WithSettler(settler PaymentSettler) Option {
	return func(f *Facility) {
		f.settler = settler
	}
}

func WithClock(clock Clock) Option {
	return func(f *Facility) {
		f.clock = clock
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(f *Facility) {
		f.logger = logger
	}
}

func NewFacility(numLevels int, hourlyRate float64, opts ...Option) (*Facility, error) {
	if numLevels < 1 {
		return nil, fmt.Errorf("%w: facility needs at least one level, got %d", ErrInvalidLevel, numLevels)
	}
	if hourlyRate < 0 || math.IsNaN(hourlyRate) || math.IsInf(hourlyRate, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRate, hourlyRate)
	}

	f := &Facility{
		levels:     make([]*Level, numLevels),
		spotLevels: make(map[SpotID]int),
		tickets:    make(map[string]*Ticket),
		nextSpotID: 1,
		hourlyRate: hourlyRate,
		fees:       HourlyFee{},
		clock:      SystemClock(),
		logger:     slog.Default(),
	}
	for i := range f.levels {
		f.levels[i] = NewLevel(i)
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.settler == nil {
		f.settler = NewSimulatedSettler(f.logger)
	}

	return f, nil
}

// AddSpots appends count fresh spots of the given size to a level. Every
// spot gets an id that is unique across the facility.
func (f *Facility) AddSpots(level int, size SizeClass, count int) error {
	if !size.Valid() {
		return fmt.Errorf("%w: %s", ErrInvalidSize, size)
	}
	if count < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidSpotCount, count)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if level < 0 || level >= len(f.levels) {
		return fmt.Errorf("%w: %d (facility has %d levels)", ErrInvalidLevel, level, len(f.levels))
	}

	for i := 0; i < count; i++ {
		id := f.nextSpotID
		f.nextSpotID++
		f.levels[level].AddSpot(NewSpot(id, size))
		f.spotLevels[id] = level
	}
	return nil
}

// Park allocates the best fitting spot and issues a ticket. Exact-size spots
// on any level win over larger ones; ties go to the lowest level.
func (f *Facility) Park(vehicle *Vehicle) (Ticket, error) {
	if vehicle == nil || vehicle.RegistrationNumber == "" || !vehicle.Type.Valid() {
		return Ticket{}, ErrInvalidVehicle
	}
	occupant := *vehicle
	vehicle = &occupant

	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.tickets[vehicle.RegistrationNumber]; ok {
		return Ticket{}, fmt.Errorf("%w: %s", ErrAlreadyParked, vehicle.RegistrationNumber)
	}

	// Widen the acceptable size one class at a time so that a larger spot is
	// only handed out once no level has a free spot of the exact class.
	for _, ceiling := range SizeClasses {
		if ceiling < vehicle.Size() {
			continue
		}
		for _, level := range f.levels {
			spotID, ok := level.Allocate(vehicle, ceiling)
			if !ok {
				continue
			}

			ticket := &Ticket{
				ID:          uuid.New().String(),
				SpotID:      spotID,
				Level:       level.Number(),
				VehicleID:   vehicle.RegistrationNumber,
				VehicleType: vehicle.Type,
				EntryTime:   f.clock.Now(),
			}
			f.tickets[vehicle.RegistrationNumber] = ticket

			f.logger.Info("vehicle parked",
				slog.String("vehicle_id", ticket.VehicleID),
				slog.Int("spot_id", int(ticket.SpotID)),
				slog.Int("level", ticket.Level),
			)
			return *ticket, nil
		}
	}

	return Ticket{}, fmt.Errorf("%w for %s", ErrNoCapacity, vehicle.Type)
}

// UnparkAndPay settles the fee for vehicleID and frees its spot. A declined
// payment leaves the ticket and the spot exactly as they were.
func (f *Facility) UnparkAndPay(vehicleID string, method PaymentMethod) (Settlement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	ticket, ok := f.tickets[vehicleID]
	if !ok {
		return Settlement{}, fmt.Errorf("%w: %s", ErrTicketNotFound, vehicleID)
	}

	exit := f.clock.Now()
	elapsed := ticket.Elapsed(exit)
	fee := f.fees.Fee(elapsed, f.hourlyRate)
	if math.IsNaN(fee) || math.IsInf(fee, 0) {
		f.logger.Error("fee calculator returned a non-finite fee",
			slog.String("vehicle_id", vehicleID),
			slog.Float64("fee", fee),
		)
		return Settlement{}, fmt.Errorf("%w: fee %v for %s", ErrInvalidFee, fee, vehicleID)
	}
	fee = math.Max(0, fee)

	if err := f.settler.Settle(fee, method); err != nil {
		f.logger.Warn("payment declined",
			slog.String("vehicle_id", vehicleID),
			slog.String("method", method.String()),
			slog.Float64("fee", fee),
			slog.String("error", err.Error()),
		)
		return Settlement{}, fmt.Errorf("%w: %w", ErrPaymentFailed, err)
	}

	levelIndex, ok := f.spotLevels[ticket.SpotID]
	if !ok || levelIndex != ticket.Level || !f.levels[levelIndex].Release(ticket.SpotID) {
		f.logger.Error("ticket does not match spot state",
			slog.String("vehicle_id", vehicleID),
			slog.Int("spot_id", int(ticket.SpotID)),
			slog.Int("level", ticket.Level),
		)
		return Settlement{}, fmt.Errorf("%w: spot %d for %s", ErrInternalInconsistency, ticket.SpotID, vehicleID)
	}

	delete(f.tickets, vehicleID)

	f.logger.Info("vehicle unparked",
		slog.String("vehicle_id", vehicleID),
		slog.Int("spot_id", int(ticket.SpotID)),
		slog.Duration("duration", elapsed),
		slog.Float64("fee", fee),
	)

	return Settlement{
		Ticket:   *ticket,
		ExitTime: exit,
		Duration: elapsed,
		Fee:      fee,
		Method:   method,
	}, nil
}

// Availability counts free spots per size class. It reads each level under
// that level's lock only, so the total is a snapshot, not a linearizable view.
func (f *Facility) Availability() map[SizeClass]int {
	availability := make(map[SizeClass]int, len(SizeClasses))
	for _, size := range SizeClasses {
		availability[size] = 0
	}
	for _, level := range f.levels {
		for _, size := range SizeClasses {
			availability[size] += level.AvailableCount(size)
		}
	}
	return availability
}

// Capacity counts all spots per size class, free or not.
func (f *Facility) Capacity() map[SizeClass]int {
	capacity := make(map[SizeClass]int, len(SizeClasses))
	for _, size := range SizeClasses {
		capacity[size] = 0
	}
	for _, level := range f.levels {
		for _, size := range SizeClasses {
			capacity[size] += level.Capacity(size)
		}
	}
	return capacity
}

func (f *Facility) Ticket(vehicleID string) (Ticket, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	ticket, ok := f.tickets[vehicleID]
	if !ok {
		return Ticket{}, false
	}
	return *ticket, true
}

// ActiveTickets returns a copy of every open ticket ordered by spot id.
func (f *Facility) ActiveTickets() []Ticket {
	f.mu.Lock()
	defer f.mu.Unlock()

	tickets := make([]Ticket, 0, len(f.tickets))
	for _, ticket := range f.tickets {
		tickets = append(tickets, *ticket)
	}
	sort.Slice(tickets, func(i, j int) bool {
		return tickets[i].SpotID < tickets[j].SpotID
	})
	return tickets
}

// Status returns a per-spot snapshot of every level in order.
func (f *Facility) Status() [][]SpotStatus {
	status := make([][]SpotStatus, len(f.levels))
	for i, level := range f.levels {
		status[i] = level.Snapshot()
	}
	return status
}

func (f *Facility) Levels() int {
	return len(f.levels)
}

func (f *Facility) HourlyRate() float64 {
	return f.hourlyRate
}
