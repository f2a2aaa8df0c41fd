package entity

import "time"

const (
	TradeKindKiosk  = "KIOSK"
	TradeKindRemote = "REMOTE"
)

// TradeEvent is published after every committed kiosk or remote-trade transition.
type TradeEvent struct {
	Kind          string    `json:"kind"`
	Action        string    `json:"action"`
	ProductID     string    `json:"productId"`
	Status        string    `json:"status"`
	SerialNumber  string    `json:"serialNumber,omitempty"`
	CabinetNumber int       `json:"cabinetNumber,omitempty"`
	SellerID      string    `json:"sellerId"`
	BuyerID       string    `json:"buyerId,omitempty"`
	OccurredAt    time.Time `json:"occurredAt"`
}

// Recipients are the parties that should hear about the event.
func (e TradeEvent) Recipients() []string {
	if e.BuyerID == "" || e.BuyerID == e.SellerID {
		return []string{e.SellerID}
	}
	return []string{e.SellerID, e.BuyerID}
}
