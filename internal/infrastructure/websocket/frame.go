package websocket

import (
	"encoding/json"
	"time"

	"campusmarket/internal/domain/entity"
)

const (
	FrameTalk  = "TALK"
	FrameRead  = "READ"
	FrameError = "ERROR"
	FrameTrade = "TRADE"
)

// InboundFrame is what clients send: TALK {content, productId?} or READ {messageId}.
type InboundFrame struct {
	Type      string `json:"type"`
	Content   string `json:"content,omitempty"`
	ProductID string `json:"productId,omitempty"`
	MessageID string `json:"messageId,omitempty"`
}

type TalkFrame struct {
	Type         string    `json:"type"`
	MessageID    string    `json:"messageId"`
	AuthorID     string    `json:"authorId"`
	Nickname     string    `json:"nickname"`
	Content      string    `json:"content"`
	ProductID    string    `json:"productId,omitempty"`
	IsRead       bool      `json:"isRead"`
	ReadByOthers bool      `json:"readByOthers"`
	CreatedAt    time.Time `json:"createdAt"`
}

type ReadFrame struct {
	Type      string `json:"type"`
	MessageID string `json:"messageId"`
	ReaderID  string `json:"readerId"`
}

type ErrorFrame struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type TradeFrame struct {
	Type string `json:"type"`
	entity.TradeEvent
}

// NewTalkFrame renders message as seen by viewerID.
func NewTalkFrame(message *entity.Message, viewerID string) TalkFrame {
	return TalkFrame{
		Type:         FrameTalk,
		MessageID:    message.ID,
		AuthorID:     message.AuthorID,
		Nickname:     message.Nickname,
		Content:      message.Content,
		ProductID:    message.ProductID,
		IsRead:       message.IsReadBy(viewerID),
		ReadByOthers: message.ReadByOthers(),
		CreatedAt:    message.CreatedAt,
	}
}

func NewReadFrame(messageID, readerID string) ReadFrame {
	return ReadFrame{Type: FrameRead, MessageID: messageID, ReaderID: readerID}
}

func NewErrorFrame(code, message string) ErrorFrame {
	return ErrorFrame{Type: FrameError, Code: code, Message: message}
}

func NewTradeFrame(event entity.TradeEvent) TradeFrame {
	return TradeFrame{Type: FrameTrade, TradeEvent: event}
}

func Encode(frame interface{}) ([]byte, error) {
	return json.Marshal(frame)
}
