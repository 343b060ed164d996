package parking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSizeClassOrder(t *testing.T) {
	assert.Less(t, int(Motorcycle), int(Compact))
	assert.Less(t, int(Compact), int(Large))
}

func TestVehicleTypeSize(t *testing.T) {
	assert.Equal(t, Motorcycle, MotorcycleVehicle.Size())
	assert.Equal(t, Compact, Car.Size())
	assert.Equal(t, Large, Truck.Size())
}

func TestParseSizeClass(t *testing.T) {
	size, err := ParseSizeClass("Compact")
	require.NoError(t, err)
	assert.Equal(t, Compact, size)

	_, err = ParseSizeClass("huge")
	assert.Error(t, err)
}

func TestParseVehicleType(t *testing.T) {
	vt, err := ParseVehicleType("truck")
	require.NoError(t, err)
	assert.Equal(t, Truck, vt)

	_, err = ParseVehicleType("bicycle")
	assert.Error(t, err)
}

func TestParsePaymentMethod(t *testing.T) {
	for _, input := range []string{"credit_card", "Credit-Card", "CREDIT_CARD"} {
		m, err := ParsePaymentMethod(input)
		require.NoError(t, err, input)
		assert.Equal(t, CreditCard, m)
	}

	_, err := ParsePaymentMethod("cheque")
	assert.Error(t, err)
}
