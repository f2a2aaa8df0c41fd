package entity

import (
	"time"
)

const (
	ProductStatusOnSale   = "ON_SALE"
	ProductStatusReserved = "RESERVED"
	ProductStatusSoldOut  = "SOLD_OUT"
)

const (
	TradeMethodDirect = "DIRECT"
	TradeMethodKiosk  = "KIOSK"
	TradeMethodRemote = "REMOTE"
)

// Product is owned by the listing service; trades only read it and flip Status.
type Product struct {
	ID          string    `json:"id" firestore:"id"`
	SellerID    string    `json:"seller_id" firestore:"sellerId"`
	Name        string    `json:"name" firestore:"name"`
	Price       int64     `json:"price" firestore:"price"`
	Status      string    `json:"status" firestore:"status"`
	TradeMethod string    `json:"trade_method" firestore:"tradeMethod"`
	CreatedAt   time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt   time.Time `json:"updated_at" firestore:"updatedAt"`
}

func (p *Product) IsSoldOut() bool {
	return p.Status == ProductStatusSoldOut
}
