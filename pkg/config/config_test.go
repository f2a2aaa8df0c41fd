package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StoreMemory, cfg.StoreDriver)
	assert.Equal(t, AuthJWT, cfg.AuthProvider)
	assert.Equal(t, 8, cfg.KioskCabinetCount)
	assert.Equal(t, 30*time.Minute, cfg.KioskSerialTTL)
	assert.Equal(t, 100, cfg.ChatHistoryLimit)
	assert.False(t, cfg.NeedsFirebase())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("KIOSK_CABINET_COUNT", "4")
	t.Setenv("KIOSK_SERIAL_TTL", "5m")
	t.Setenv("STORE_DRIVER", StorePostgres)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.KioskCabinetCount)
	assert.Equal(t, 5*time.Minute, cfg.KioskSerialTTL)
	assert.Equal(t, StorePostgres, cfg.StoreDriver)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"memory with jwt", Config{StoreDriver: StoreMemory, AuthProvider: AuthJWT, JWTSecret: "s", KioskCabinetCount: 8, ChatHistoryLimit: 100}, false},
		{"jwt without secret", Config{StoreDriver: StoreMemory, AuthProvider: AuthJWT, KioskCabinetCount: 8, ChatHistoryLimit: 100}, true},
		{"firestore without project", Config{StoreDriver: StoreFirestore, AuthProvider: AuthJWT, JWTSecret: "s", KioskCabinetCount: 8, ChatHistoryLimit: 100}, true},
		{"unknown store", Config{StoreDriver: "mongo", AuthProvider: AuthJWT, JWTSecret: "s", KioskCabinetCount: 8, ChatHistoryLimit: 100}, true},
		{"no cabinets", Config{StoreDriver: StoreMemory, AuthProvider: AuthJWT, JWTSecret: "s", ChatHistoryLimit: 100}, true},
		{"no chat history", Config{StoreDriver: StoreMemory, AuthProvider: AuthJWT, JWTSecret: "s", KioskCabinetCount: 8}, true},
		{"chat history above send buffer", Config{StoreDriver: StoreMemory, AuthProvider: AuthJWT, JWTSecret: "s", KioskCabinetCount: 8, ChatHistoryLimit: 300}, true},
		{"chat history at max", Config{StoreDriver: StoreMemory, AuthProvider: AuthJWT, JWTSecret: "s", KioskCabinetCount: 8, ChatHistoryLimit: MaxChatHistoryLimit}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
