package parking

import "sync"

// Level owns a partition of spots. Its mutex is the only thing that guards
// those spots.
type Level struct {
	number int

	mu    sync.Mutex
	spots map[SizeClass][]*Spot
}

func NewLevel(number int) *Level {
	return &Level{
		number: number,
		spots:  make(map[SizeClass][]*Spot),
	}
}

func (l *Level) Number() int {
	return l.number
}

func (l *Level) AddSpot(spot *Spot) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.spots[spot.Size()] = append(l.spots[spot.Size()], spot)
}

// Allocate parks vehicle in the first free spot that fits, trying the exact
// size class first and then each larger class up to and including ceiling.
// Within a class spots are tried in insertion order.
func (l *Level) Allocate(vehicle *Vehicle, ceiling SizeClass) (SpotID, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	required := vehicle.Size()
	for _, size := range SizeClasses {
		if size < required || size > ceiling {
			continue
		}
		for _, spot := range l.spots[size] {
			if spot.TryOccupy(vehicle, required) {
				return spot.ID(), true
			}
		}
	}
	return 0, false
}

// Release frees the spot with the given id. It reports false when the spot
// is not on this level or is already free.
func (l *Level) Release(id SpotID) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, size := range SizeClasses {
		for _, spot := range l.spots[size] {
			if spot.ID() != id {
				continue
			}
			if spot.IsAvailable() {
				return false
			}
			spot.Release()
			return true
		}
	}
	return false
}

func (l *Level) AvailableCount(size SizeClass) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	count := 0
	for _, spot := range l.spots[size] {
		if spot.IsAvailable() {
			count++
		}
	}
	return count
}

func (l *Level) Capacity(size SizeClass) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.spots[size])
}

// SpotStatus is a point-in-time copy of a spot.
type SpotStatus struct {
	ID           SpotID
	Level        int
	Size         SizeClass
	Occupied     bool
	Registration string
	Color        string
}

// Snapshot copies the state of every spot, ordered by size class and then
// insertion order.
func (l *Level) Snapshot() []SpotStatus {
	l.mu.Lock()
	defer l.mu.Unlock()

	var statuses []SpotStatus
	for _, size := range SizeClasses {
		for _, spot := range l.spots[size] {
			status := SpotStatus{
				ID:    spot.ID(),
				Level: l.number,
				Size:  size,
			}
			if occupant := spot.Occupant(); occupant != nil {
				status.Occupied = true
				status.Registration = occupant.RegistrationNumber
				status.Color = occupant.Color
			}
			statuses = append(statuses, status)
		}
	}
	return statuses
}
