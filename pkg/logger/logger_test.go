package logger

import (
	"bytes"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogTransitionErrorNamesKindAndKey(t *testing.T) {
	var buf bytes.Buffer
	WarnLogger.SetOutput(&buf)
	defer WarnLogger.SetOutput(os.Stdout)

	LogTransitionError(KindKiosk, "417203", "pickup", errors.New("expected status PAID"))

	line := buf.String()
	assert.Contains(t, line, "WARN: ")
	assert.Contains(t, line, "kind=KIOSK, key=417203, action=pickup")
	assert.Contains(t, line, "expected status PAID")
}

func TestDebugOnlyInDevelopment(t *testing.T) {
	var buf bytes.Buffer
	DebugLogger.SetOutput(&buf)
	defer DebugLogger.SetOutput(os.Stdout)

	t.Setenv("ENVIRONMENT", "production")
	Debug("hidden %d", 1)
	assert.Empty(t, buf.String())

	t.Setenv("ENVIRONMENT", "development")
	Debug("shown %d", 2)
	assert.Contains(t, buf.String(), "shown 2")
}
