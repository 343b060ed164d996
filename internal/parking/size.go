package parking

import (
	"fmt"
	"strings"
)

// SizeClass is the capability tier of a spot. A spot of class X can host any
// vehicle whose required class is <= X.
type SizeClass int

const (
	Motorcycle SizeClass = iota
	Compact
	Large
)

// SizeClasses lists every size class in ascending order.
var SizeClasses = []SizeClass{Motorcycle, Compact, Large}

func (s SizeClass) String() string {
	switch s {
	case Motorcycle:
		return "motorcycle"
	case Compact:
		return "compact"
	case Large:
		return "large"
	default:
		return fmt.Sprintf("size(%d)", int(s))
	}
}

func (s SizeClass) Valid() bool {
	return s >= Motorcycle && s <= Large
}

func ParseSizeClass(value string) (SizeClass, error) {
	for _, s := range SizeClasses {
		if strings.EqualFold(value, s.String()) {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown size class %q", value)
}

type VehicleType int

const (
	MotorcycleVehicle VehicleType = iota
	Car
	Truck
)

func (t VehicleType) String() string {
	switch t {
	case MotorcycleVehicle:
		return "motorcycle"
	case Car:
		return "car"
	case Truck:
		return "truck"
	default:
		return fmt.Sprintf("vehicle(%d)", int(t))
	}
}

// Size returns the smallest spot class the vehicle fits in.
func (t VehicleType) Size() SizeClass {
	switch t {
	case Car:
		return Compact
	case Truck:
		return Large
	default:
		return Motorcycle
	}
}

func (t VehicleType) Valid() bool {
	return t >= MotorcycleVehicle && t <= Truck
}

func ParseVehicleType(value string) (VehicleType, error) {
	for _, t := range []VehicleType{MotorcycleVehicle, Car, Truck} {
		if strings.EqualFold(value, t.String()) {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown vehicle type %q", value)
}
