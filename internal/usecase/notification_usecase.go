package usecase

import (
	"context"

	"campusmarket/internal/domain/entity"
	ws "campusmarket/internal/infrastructure/websocket"
	"campusmarket/pkg/logger"
)

// NotificationUseCase pushes trade transitions to the live connections of
// the parties involved.
type NotificationUseCase struct {
	events    EventSubscriber
	wsManager *ws.Manager
}

func NewNotificationUseCase(events EventSubscriber, wsManager *ws.Manager) *NotificationUseCase {
	return &NotificationUseCase{
		events:    events,
		wsManager: wsManager,
	}
}

// Start subscribes before returning, so no event published afterwards is
// missed, and delivers in the background until ctx is cancelled. The
// returned channel is closed once delivery has stopped.
func (uc *NotificationUseCase) Start(ctx context.Context) <-chan struct{} {
	ch, unsubscribe := uc.events.Subscribe()
	done := make(chan struct{})

	go func() {
		defer close(done)
		defer unsubscribe()

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-ch:
				if !ok {
					return
				}
				uc.deliver(event)
			}
		}
	}()
	return done
}

func (uc *NotificationUseCase) deliver(event entity.TradeEvent) {
	frame, err := ws.Encode(ws.NewTradeFrame(event))
	if err != nil {
		logger.Error("Failed to encode trade event for product %s: %v", event.ProductID, err)
		return
	}

	sent := uc.wsManager.SendToUsers(event.Recipients(), frame)
	logger.Debug("Trade event %s/%s for product %s delivered to %d connections", event.Kind, event.Action, event.ProductID, sent)
}
