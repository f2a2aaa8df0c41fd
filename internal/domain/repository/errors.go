package repository

import "errors"

var (
	// ErrSerialTaken is wrapped by stores when a kiosk serial number is already issued.
	ErrSerialTaken = errors.New("serial number already issued")

	// ErrNoCabinet is wrapped when every cabinet in the pool is occupied.
	ErrNoCabinet = errors.New("no cabinet available")
)
