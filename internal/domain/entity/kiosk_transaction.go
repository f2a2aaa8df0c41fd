package entity

import (
	"strings"
	"time"

	"campusmarket/pkg/errors"
)

type KioskStatus string

const (
	KioskStatusWaiting   KioskStatus = "WAITING"
	KioskStatusDeposited KioskStatus = "DEPOSITED"
	KioskStatusPaid      KioskStatus = "PAID"
	KioskStatusCompleted KioskStatus = "COMPLETED"
	KioskStatusCancelled KioskStatus = "CANCELLED"

	// KioskStatusNone is reported for products that never had a kiosk transaction.
	KioskStatusNone KioskStatus = "NONE"
)

type KioskAction string

const (
	KioskActionDeposit        KioskAction = "confirm deposit"
	KioskActionSellerComplete KioskAction = "seller complete"
	KioskActionBuyerPay       KioskAction = "buyer pay"
	KioskActionPickup         KioskAction = "pickup"
	KioskActionExpire         KioskAction = "expire"
)

type kioskTransition struct {
	from KioskStatus
	to   KioskStatus
}

var kioskTransitions = map[KioskAction]kioskTransition{
	KioskActionDeposit:        {from: KioskStatusWaiting, to: KioskStatusDeposited},
	KioskActionSellerComplete: {from: KioskStatusDeposited, to: KioskStatusDeposited},
	KioskActionBuyerPay:       {from: KioskStatusDeposited, to: KioskStatusPaid},
	KioskActionPickup:         {from: KioskStatusPaid, to: KioskStatusCompleted},
	KioskActionExpire:         {from: KioskStatusWaiting, to: KioskStatusCancelled},
}

type KioskTransaction struct {
	ID            string      `json:"id" firestore:"id"`
	SerialNumber  string      `json:"serial_number" firestore:"serialNumber"`
	ProductID     string      `json:"product_id" firestore:"productId"`
	SellerID      string      `json:"seller_id" firestore:"sellerId"`
	BuyerID       string      `json:"buyer_id,omitempty" firestore:"buyerId,omitempty"`
	CabinetNumber int         `json:"cabinet_number,omitempty" firestore:"cabinetNumber,omitempty"` // 0 until deposited
	Status        KioskStatus `json:"status" firestore:"status"`
	CreatedAt     time.Time   `json:"created_at" firestore:"createdAt"`
	UpdatedAt     time.Time   `json:"updated_at" firestore:"updatedAt"`
	ExpiresAt     time.Time   `json:"expires_at" firestore:"expiresAt"`
}

// IsLive reports whether the transaction still blocks a new one for the same product.
func (t *KioskTransaction) IsLive() bool {
	return t.Status != KioskStatusCancelled
}

// IsExpired is true only for WAITING transactions past their expiry.
func (t *KioskTransaction) IsExpired(now time.Time) bool {
	return t.Status == KioskStatusWaiting && now.After(t.ExpiresAt)
}

// Advance applies action if the current status allows it.
func (t *KioskTransaction) Advance(action KioskAction, now time.Time) error {
	tr, ok := kioskTransitions[action]
	if !ok {
		return errors.BadRequest("unknown kiosk action "+string(action), nil)
	}
	if t.Status != tr.from {
		return errors.InvalidState(string(action), string(tr.from), string(t.Status))
	}
	t.Status = tr.to
	t.UpdatedAt = now
	return nil
}

// ValidSerial reports whether s is six ASCII digits.
func ValidSerial(s string) bool {
	return len(s) == 6 && strings.Trim(s, "0123456789") == ""
}
