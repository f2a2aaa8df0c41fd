package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campusmarket/pkg/errors"
)

func TestKioskAdvanceFollowsLifecycle(t *testing.T) {
	now := time.Now()
	tx := &KioskTransaction{Status: KioskStatusWaiting}

	require.NoError(t, tx.Advance(KioskActionDeposit, now))
	assert.Equal(t, KioskStatusDeposited, tx.Status)

	require.NoError(t, tx.Advance(KioskActionSellerComplete, now))
	assert.Equal(t, KioskStatusDeposited, tx.Status)

	require.NoError(t, tx.Advance(KioskActionBuyerPay, now))
	require.NoError(t, tx.Advance(KioskActionPickup, now))
	assert.Equal(t, KioskStatusCompleted, tx.Status)

	err := tx.Advance(KioskActionPickup, now)
	assert.True(t, errors.Is(err, errors.CodeInvalidState))
}

func TestKioskExpiryOnlyAppliesToWaiting(t *testing.T) {
	now := time.Now()
	tx := &KioskTransaction{Status: KioskStatusWaiting, ExpiresAt: now.Add(-time.Second)}
	assert.True(t, tx.IsExpired(now))

	tx.Status = KioskStatusDeposited
	assert.False(t, tx.IsExpired(now))

	tx = &KioskTransaction{Status: KioskStatusWaiting, ExpiresAt: now.Add(time.Minute)}
	assert.False(t, tx.IsExpired(now))
}

func TestValidSerial(t *testing.T) {
	assert.True(t, ValidSerial("000123"))
	assert.True(t, ValidSerial("417203"))
	assert.False(t, ValidSerial("41720"))
	assert.False(t, ValidSerial("41720a"))
	assert.False(t, ValidSerial("4172031"))
}

func TestRemoteTradeApplyStampsAndGuards(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	trade := &RemoteTrade{Status: RemoteTradeStatusPending}

	err := trade.Apply(RemoteActionBuyerPay, at)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.CodeInvalidState))

	require.NoError(t, trade.Apply(RemoteActionSellerStart, at))
	require.NotNil(t, trade.SellerStartedAt)
	assert.Equal(t, at, *trade.SellerStartedAt)

	// restart is accepted while nobody has paid
	require.NoError(t, trade.Apply(RemoteActionSellerStart, at))

	require.NoError(t, trade.Apply(RemoteActionBuyerPay, at))
	assert.Error(t, trade.Apply(RemoteActionSellerStart, at))
	require.NoError(t, trade.Apply(RemoteActionSellerComplete, at))
	require.NoError(t, trade.Apply(RemoteActionBuyerComplete, at))
	assert.Equal(t, RemoteTradeStatusCompleted, trade.Status)
	assert.NotNil(t, trade.BuyerCompletedAt)

	assert.Equal(t, RoleBuyer, RoleFor(RemoteActionBuyerComplete))
	assert.Equal(t, RoleSeller, RoleFor(RemoteActionSellerComplete))
}

func TestMessageReadState(t *testing.T) {
	msg := &Message{AuthorID: "alice", ReadBy: []string{"alice"}}

	assert.True(t, msg.IsReadBy("alice"))
	assert.False(t, msg.IsReadBy("bob"))
	assert.False(t, msg.ReadByOthers())

	msg.ReadBy = append(msg.ReadBy, "bob")
	assert.True(t, msg.ReadByOthers())
}

func TestTradeEventRecipients(t *testing.T) {
	assert.Equal(t, []string{"s"}, TradeEvent{SellerID: "s"}.Recipients())
	assert.Equal(t, []string{"s", "b"}, TradeEvent{SellerID: "s", BuyerID: "b"}.Recipients())
}
