package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"campusmarket/internal/domain/entity"
	"campusmarket/internal/domain/repository"
	"campusmarket/internal/infrastructure/ratelimit"
	ws "campusmarket/internal/infrastructure/websocket"
	"campusmarket/pkg/errors"
	"campusmarket/pkg/logger"
)

const (
	maxMessageLength = 2000

	// send-buffer slots kept free for live frames while history is replayed
	replayHeadroom = 32
)

type ChatUseCase struct {
	messageRepo  repository.MessageRepository
	wsManager    *ws.Manager
	rateLimiter  *ratelimit.RateLimiter
	historyLimit int
	now          func() time.Time
}

func NewChatUseCase(
	messageRepo repository.MessageRepository,
	wsManager *ws.Manager,
	rateLimiter *ratelimit.RateLimiter,
	historyLimit int,
) *ChatUseCase {
	return &ChatUseCase{
		messageRepo:  messageRepo,
		wsManager:    wsManager,
		rateLimiter:  rateLimiter,
		historyLimit: historyLimit,
		now:          time.Now,
	}
}

// MessageView is a message as seen by one viewer over REST.
type MessageView struct {
	ID           string    `json:"id"`
	AuthorID     string    `json:"author_id"`
	Nickname     string    `json:"nickname"`
	Content      string    `json:"content"`
	ProductID    string    `json:"product_id,omitempty"`
	IsRead       bool      `json:"is_read"`
	ReadByOthers bool      `json:"read_by_others"`
	CreatedAt    time.Time `json:"created_at"`
}

func newMessageView(m *entity.Message, viewerID string) MessageView {
	return MessageView{
		ID:           m.ID,
		AuthorID:     m.AuthorID,
		Nickname:     m.Nickname,
		Content:      m.Content,
		ProductID:    m.ProductID,
		IsRead:       m.IsReadBy(viewerID),
		ReadByOthers: m.ReadByOthers(),
		CreatedAt:    m.CreatedAt,
	}
}

// Join registers client and replays the conversation's recent history
// oldest first, never more than its send buffer can hold. Messages the user had not read yet are replayed as unread,
// then marked read and announced to the other connections.
func (uc *ChatUseCase) Join(ctx context.Context, client *ws.Client) error {
	uc.wsManager.Register(client)

	limit := uc.historyLimit
	if room := cap(client.Send) - replayHeadroom; room < limit {
		limit = room
	}
	if limit <= 0 {
		return nil
	}

	history, err := uc.messageRepo.ListRecent(ctx, client.ProductID, limit)
	if err != nil {
		return err
	}

	userID := client.UserID()
	for _, message := range history {
		uc.sendFrame(client, ws.NewTalkFrame(message, userID))

		if message.AuthorID == userID || message.IsReadBy(userID) {
			continue
		}
		changed, err := uc.messageRepo.MarkRead(ctx, message.ID, userID)
		if err != nil {
			logger.Error("Failed to mark message %s read for %s: %v", message.ID, userID, err)
			continue
		}
		if changed {
			uc.broadcastExcept(client.ID, ws.NewReadFrame(message.ID, userID))
		}
	}

	logger.Info("User %s joined chat (product %q, %d messages replayed)", userID, client.ProductID, len(history))
	return nil
}

func (uc *ChatUseCase) Leave(client *ws.Client) {
	uc.wsManager.Unregister(client)
}

// HandleFrame dispatches one inbound frame. Failures are answered with an
// ERROR frame to the sender only.
func (uc *ChatUseCase) HandleFrame(ctx context.Context, client *ws.Client, raw []byte) {
	var frame ws.InboundFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		uc.sendError(client, errors.BadRequest("Invalid frame format", err))
		return
	}

	var action string
	switch frame.Type {
	case ws.FrameTalk:
		action = ratelimit.ActionChatTalk
	case ws.FrameRead:
		action = ratelimit.ActionChatRead
	default:
		uc.sendError(client, errors.BadRequest(fmt.Sprintf("Unknown frame type %q", frame.Type), nil))
		return
	}

	if allowed, wait := uc.rateLimiter.Allow(client.UserID(), action); !allowed {
		uc.sendError(client, errors.TooManyRequests(fmt.Sprintf("Rate limit exceeded, retry in %s", wait.Round(time.Second))))
		return
	}

	var err error
	switch frame.Type {
	case ws.FrameTalk:
		productID := frame.ProductID
		if productID == "" {
			productID = client.ProductID
		}
		_, err = uc.Send(ctx, client.Identity, productID, frame.Content)
	case ws.FrameRead:
		err = uc.MarkRead(ctx, client.Identity, frame.MessageID)
	}
	if err != nil {
		uc.sendError(client, err)
	}
}

// Send persists a message, read by its author only, and broadcasts it as
// unread to every connection.
func (uc *ChatUseCase) Send(ctx context.Context, identity entity.Identity, productID, content string) (*entity.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, errors.BadRequest("Message content is required", nil)
	}
	if utf8.RuneCountInString(content) > maxMessageLength {
		return nil, errors.BadRequest(fmt.Sprintf("Message cannot exceed %d characters", maxMessageLength), nil)
	}

	message := &entity.Message{
		AuthorID:  identity.UserID,
		Nickname:  identity.Nickname,
		Content:   content,
		ProductID: productID,
		ReadBy:    []string{identity.UserID},
		CreatedAt: uc.now(),
	}
	if err := uc.messageRepo.Create(ctx, message); err != nil {
		return nil, err
	}

	// no viewer: isRead is false for everyone on the live broadcast
	uc.broadcast(ws.NewTalkFrame(message, ""))
	return message, nil
}

// MarkRead records that identity read a message. Reading your own message or
// one you already read is a no-op with no broadcast.
func (uc *ChatUseCase) MarkRead(ctx context.Context, identity entity.Identity, messageID string) error {
	if messageID == "" {
		return errors.BadRequest("Message ID is required", nil)
	}

	message, err := uc.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return err
	}
	if message.AuthorID == identity.UserID {
		return nil
	}

	changed, err := uc.messageRepo.MarkRead(ctx, messageID, identity.UserID)
	if err != nil {
		return err
	}
	if changed {
		uc.broadcast(ws.NewReadFrame(messageID, identity.UserID))
	}
	return nil
}

// History returns the conversation's recent messages oldest first with read
// state computed for identity.
func (uc *ChatUseCase) History(ctx context.Context, identity entity.Identity, productID string, limit int) ([]MessageView, error) {
	if limit <= 0 || limit > uc.historyLimit {
		limit = uc.historyLimit
	}

	messages, err := uc.messageRepo.ListRecent(ctx, productID, limit)
	if err != nil {
		return nil, err
	}

	views := make([]MessageView, 0, len(messages))
	for _, m := range messages {
		views = append(views, newMessageView(m, identity.UserID))
	}
	return views, nil
}

func (uc *ChatUseCase) broadcast(frame interface{}) {
	uc.broadcastExcept("", frame)
}

func (uc *ChatUseCase) broadcastExcept(clientID string, frame interface{}) {
	data, err := ws.Encode(frame)
	if err != nil {
		logger.Error("Failed to encode frame: %v", err)
		return
	}
	uc.wsManager.BroadcastExcept(clientID, data)
}

func (uc *ChatUseCase) sendFrame(client *ws.Client, frame interface{}) {
	data, err := ws.Encode(frame)
	if err != nil {
		logger.Error("Failed to encode frame: %v", err)
		return
	}
	uc.wsManager.SendTo(client, data)
}

func (uc *ChatUseCase) sendError(client *ws.Client, err error) {
	code, message := errors.CodeInternal, "Something went wrong"
	if appErr, ok := errors.AsAppError(err); ok {
		code, message = appErr.Code, appErr.Message
	} else {
		logger.Error("Chat frame from %s failed: %v", client.UserID(), err)
	}
	uc.sendFrame(client, ws.NewErrorFrame(code, message))
}
