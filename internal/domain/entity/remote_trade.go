package entity

import (
	"strings"
	"time"

	"campusmarket/pkg/errors"
)

type RemoteTradeStatus string

const (
	RemoteTradeStatusPending         RemoteTradeStatus = "PENDING"
	RemoteTradeStatusSellerReady     RemoteTradeStatus = "SELLER_READY"
	RemoteTradeStatusBuyerPaid       RemoteTradeStatus = "BUYER_PAID"
	RemoteTradeStatusSellerCompleted RemoteTradeStatus = "SELLER_COMPLETED"
	RemoteTradeStatusCompleted       RemoteTradeStatus = "COMPLETED"
)

type RemoteTradeAction string

const (
	RemoteActionSellerStart    RemoteTradeAction = "seller start"
	RemoteActionBuyerPay       RemoteTradeAction = "buyer pay"
	RemoteActionSellerComplete RemoteTradeAction = "seller complete"
	RemoteActionBuyerComplete  RemoteTradeAction = "buyer complete"
)

type TradeRole string

const (
	RoleSeller TradeRole = "seller"
	RoleBuyer  TradeRole = "buyer"
)

type remoteTransition struct {
	role  TradeRole
	from  []RemoteTradeStatus
	to    RemoteTradeStatus
	stamp func(t *RemoteTrade, at time.Time)
}

// New states (e.g. a cancel path) are added as rows here.
var remoteTransitions = map[RemoteTradeAction]remoteTransition{
	RemoteActionSellerStart: {
		role:  RoleSeller,
		from:  []RemoteTradeStatus{RemoteTradeStatusPending, RemoteTradeStatusSellerReady},
		to:    RemoteTradeStatusSellerReady,
		stamp: func(t *RemoteTrade, at time.Time) { t.SellerStartedAt = &at },
	},
	RemoteActionBuyerPay: {
		role:  RoleBuyer,
		from:  []RemoteTradeStatus{RemoteTradeStatusSellerReady},
		to:    RemoteTradeStatusBuyerPaid,
		stamp: func(t *RemoteTrade, at time.Time) { t.BuyerPaidAt = &at },
	},
	RemoteActionSellerComplete: {
		role:  RoleSeller,
		from:  []RemoteTradeStatus{RemoteTradeStatusBuyerPaid},
		to:    RemoteTradeStatusSellerCompleted,
		stamp: func(t *RemoteTrade, at time.Time) { t.SellerCompletedAt = &at },
	},
	RemoteActionBuyerComplete: {
		role:  RoleBuyer,
		from:  []RemoteTradeStatus{RemoteTradeStatusSellerCompleted},
		to:    RemoteTradeStatusCompleted,
		stamp: func(t *RemoteTrade, at time.Time) { t.BuyerCompletedAt = &at },
	},
}

type RemoteTrade struct {
	ID                string            `json:"id" firestore:"id"`
	ProductID         string            `json:"product_id" firestore:"productId"`
	SellerID          string            `json:"seller_id" firestore:"sellerId"`
	BuyerID           string            `json:"buyer_id,omitempty" firestore:"buyerId,omitempty"`
	Status            RemoteTradeStatus `json:"status" firestore:"status"`
	FinalPrice        int64             `json:"final_price" firestore:"finalPrice"`
	PaidAmount        int64             `json:"paid_amount" firestore:"paidAmount"`
	SellerStartedAt   *time.Time        `json:"seller_started_at,omitempty" firestore:"sellerStartedAt,omitempty"`
	BuyerPaidAt       *time.Time        `json:"buyer_paid_at,omitempty" firestore:"buyerPaidAt,omitempty"`
	SellerCompletedAt *time.Time        `json:"seller_completed_at,omitempty" firestore:"sellerCompletedAt,omitempty"`
	BuyerCompletedAt  *time.Time        `json:"buyer_completed_at,omitempty" firestore:"buyerCompletedAt,omitempty"`
	CreatedAt         time.Time         `json:"created_at" firestore:"createdAt"`
	UpdatedAt         time.Time         `json:"updated_at" firestore:"updatedAt"`
}

// RoleFor returns the role an action must be performed by.
func RoleFor(action RemoteTradeAction) TradeRole {
	return remoteTransitions[action].role
}

// Apply moves the session along the transition for action. Role checks are
// the caller's job so that Forbidden is reported before InvalidState.
func (t *RemoteTrade) Apply(action RemoteTradeAction, at time.Time) error {
	tr, ok := remoteTransitions[action]
	if !ok {
		return errors.BadRequest("unknown remote trade action "+string(action), nil)
	}

	allowed := false
	expected := make([]string, 0, len(tr.from))
	for _, s := range tr.from {
		expected = append(expected, string(s))
		if t.Status == s {
			allowed = true
		}
	}
	if !allowed {
		return errors.InvalidState(string(action), strings.Join(expected, "|"), string(t.Status))
	}

	t.Status = tr.to
	tr.stamp(t, at)
	t.UpdatedAt = at
	return nil
}
