package service

import (
	"fmt"
	"math/rand/v2"
)

// SerialGenerator produces candidate kiosk serial numbers. Uniqueness is
// enforced by the store, not here.
type SerialGenerator interface {
	Next() string
}

type randomSerialGenerator struct{}

func NewRandomSerialGenerator() SerialGenerator {
	return randomSerialGenerator{}
}

func (randomSerialGenerator) Next() string {
	return fmt.Sprintf("%06d", rand.IntN(1000000))
}
