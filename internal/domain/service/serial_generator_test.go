package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"campusmarket/internal/domain/entity"
)

func TestRandomSerialGeneratorProducesSixDigits(t *testing.T) {
	gen := NewRandomSerialGenerator()

	for i := 0; i < 1000; i++ {
		serial := gen.Next()
		assert.True(t, entity.ValidSerial(serial), serial)
	}
}
