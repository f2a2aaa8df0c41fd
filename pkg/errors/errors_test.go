package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsMatchesWrappedAppError(t *testing.T) {
	err := fmt.Errorf("kiosk deposit: %w", InvalidState("confirm deposit", "WAITING", "PAID"))

	assert.True(t, Is(err, CodeInvalidState))
	assert.False(t, Is(err, CodeForbidden))
	assert.False(t, Is(stderrors.New("plain"), CodeInvalidState))
}

func TestInvalidStateNamesBothStates(t *testing.T) {
	err := InvalidState("pickup", "PAID", "DEPOSITED")

	assert.Equal(t, http.StatusBadRequest, err.Status)
	assert.Contains(t, err.Message, "PAID")
	assert.Contains(t, err.Message, "DEPOSITED")
}

func TestConflictWithUnwrapsSentinel(t *testing.T) {
	sentinel := stderrors.New("serial taken")
	err := ConflictWith("serial number collision", sentinel)

	assert.True(t, stderrors.Is(err, sentinel))
	assert.Equal(t, http.StatusConflict, err.Status)
	assert.Equal(t, "CONFLICT: serial number collision", err.Error())
}

func TestExpired(t *testing.T) {
	err := Expired("kiosk transaction", "417203")

	assert.Equal(t, http.StatusGone, err.Status)
	assert.Equal(t, CodeExpired, err.Code)
	assert.Contains(t, err.Message, "417203")
}
