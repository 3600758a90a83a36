package usecase

import (
	"context"
	"fmt"
	"time"

	"todos/pkg/eventbus"
	"todos/pkg/logger"
	"todos/services/todos/internal/entity"
	"todos/services/todos/internal/repo/persistent"

	"github.com/google/uuid"
)

// EventRelay forwards locally published events to other instances.
type EventRelay interface {
	Publish(ctx context.Context, ev eventbus.Event) error
}

// Notifier is the publishing side of notifications.
type Notifier interface {
	Notify(ctx context.Context, ev eventbus.Event) eventbus.Event
}

type NotificationUseCase interface {
	Notifier
	Subscribe(ctx context.Context, input entity.SubscribeInput) (<-chan entity.Tracked, error)
	List(ctx context.Context, userID string, unreadOnly bool, limit, offset int) ([]*entity.Notification, int64, error)
	MarkRead(ctx context.Context, userID, id string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
}

type notificationUseCase struct {
	notificationRepo persistent.NotificationRepository
	bus              *eventbus.Bus
	relay            EventRelay
	logger           *logger.Logger
	now              func() time.Time
}

// NewNotificationUseCase wires the store, the local bus and an optional relay.
// relay may be nil.
func NewNotificationUseCase(
	notificationRepo persistent.NotificationRepository,
	bus *eventbus.Bus,
	relay EventRelay,
	logger *logger.Logger,
) NotificationUseCase {
	return &notificationUseCase{
		notificationRepo: notificationRepo,
		bus:              bus,
		relay:            relay,
		logger:           logger,
		now:              time.Now,
	}
}

// Notify assigns an id to ev when it has none, stores it, publishes it on the
// local bus and forwards it to the relay. Store and relay failures are logged
// only; the caller's operation has already succeeded.
func (uc *notificationUseCase) Notify(ctx context.Context, ev eventbus.Event) eventbus.Event {
	if ev.ID == "" {
		ev.ID = eventbus.NewEventID()
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = uc.now().UTC()
	}

	ctx = context.WithoutCancel(ctx)

	if err := uc.notificationRepo.Create(ctx, entity.NotificationFromEvent(ev)); err != nil {
		uc.logger.Error("Failed to store notification %s for user %s: %v", ev.ID, ev.UserID, err)
	}

	uc.bus.Publish(ev)

	if uc.relay != nil {
		if err := uc.relay.Publish(ctx, ev); err != nil {
			uc.logger.Error("Failed to relay notification %s: %v", ev.ID, err)
		}
	}

	uc.logger.Debug("Notification %s published for user %s", ev.ID, ev.UserID)
	return ev
}

// Subscribe attaches to the bus before returning, so every event published
// after the call is considered. The returned channel is closed once ctx is
// done or the bus shuts down.
func (uc *notificationUseCase) Subscribe(ctx context.Context, input entity.SubscribeInput) (<-chan entity.Tracked, error) {
	if input.UserID != "" {
		if _, err := uuid.Parse(input.UserID); err != nil {
			return nil, validationError("userId must be a UUID")
		}
	}
	if input.LastEventID != "" {
		uc.logger.Debug("Subscriber resuming after %s; missed events are not replayed", input.LastEventID)
	}

	sub := uc.bus.Subscribe(ctx)
	out := make(chan entity.Tracked)

	go func() {
		defer close(out)
		defer sub.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub.Events():
				if !ok {
					return
				}
				if input.UserID != "" && ev.UserID != input.UserID {
					continue
				}
				select {
				case out <- entity.Tracked{ID: ev.ID, Data: ev}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

func (uc *notificationUseCase) List(ctx context.Context, userID string, unreadOnly bool, limit, offset int) ([]*entity.Notification, int64, error) {
	limit, offset = clampPage(limit, offset)

	notifications, err := uc.notificationRepo.List(ctx, userID, unreadOnly, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list notifications: %w", err)
	}

	unread, err := uc.notificationRepo.CountUnread(ctx, userID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}

	return notifications, unread, nil
}

func (uc *notificationUseCase) MarkRead(ctx context.Context, userID, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("notification %w", ErrNotFound)
	}
	if err := uc.notificationRepo.MarkRead(ctx, userID, id); err != nil {
		if isNotFound(err) {
			return fmt.Errorf("notification %w", ErrNotFound)
		}
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return nil
}

func (uc *notificationUseCase) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	n, err := uc.notificationRepo.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return n, nil
}
