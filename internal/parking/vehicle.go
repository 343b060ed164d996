package parking

type Vehicle struct {
	RegistrationNumber string
	Color              string
	Type               VehicleType
}

func NewVehicle(registrationNumber, color string, vehicleType VehicleType) *Vehicle {
	return &Vehicle{
		RegistrationNumber: registrationNumber,
		Color:              color,
		Type:               vehicleType,
	}
}

func (v *Vehicle) Size() SizeClass {
	return v.Type.Size()
}
