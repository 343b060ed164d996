package parking

import "errors"

var (
	ErrInvalidLevel          = errors.New("invalid level")
	ErrInvalidSpotCount      = errors.New("invalid spot count")
	ErrInvalidSize           = errors.New("invalid size class")
	ErrInvalidRate           = errors.New("invalid hourly rate")
	ErrInvalidVehicle        = errors.New("invalid vehicle")
	ErrNoCapacity            = errors.New("no spot available")
	ErrAlreadyParked         = errors.New("vehicle already parked")
	ErrTicketNotFound        = errors.New("ticket not found")
	ErrPaymentFailed         = errors.New("payment failed")
	ErrInvalidFee            = errors.New("invalid fee")
	ErrInternalInconsistency = errors.New("internal inconsistency")
)
