package parking

// SpotID is unique across the whole facility.
type SpotID int

// Spot is not safe for concurrent use; its Level serializes access.
type Spot struct {
	id   SpotID
	size SizeClass
	// nil means the spot is empty.
	occupant *Vehicle
}

func NewSpot(id SpotID, size SizeClass) *Spot {
	return &Spot{
		id:   id,
		size: size,
	}
}

// TryOccupy parks a copy of vehicle if the spot is free and large enough
// for required. Later changes to *vehicle do not reach the spot.
func (s *Spot) TryOccupy(vehicle *Vehicle, required SizeClass) bool {
	if s.occupant != nil || vehicle == nil || required > s.size {
		return false
	}
	occupant := *vehicle
	s.occupant = &occupant
	return true
}

// Release empties the spot and hands back whoever was parked there.
func (s *Spot) Release() *Vehicle {
	vehicle := s.occupant
	s.occupant = nil
	return vehicle
}

func (s *Spot) IsAvailable() bool {
	return s.occupant == nil
}

func (s *Spot) ID() SpotID {
	return s.id
}

func (s *Spot) Size() SizeClass {
	return s.size
}

func (s *Spot) Occupant() *Vehicle {
	return s.occupant
}
