package service

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/formhive/formhive"
	"github.com/formhive/formhive/internal/domain"
)

const (
	ChannelEvents      = "formhive:events"
	ChannelFormDeleted = "formhive:form-deleted"
)

// SignalService fans domain events out through redis pub/sub.
type SignalService struct {
	rdb *redis.Client
}

func NewSignalService(redisClient *redis.Client) *SignalService {
	return &SignalService{
		rdb: redisClient,
	}
}

func (s *SignalService) PublishSubmissionCreated(ctx context.Context, event formhive.Event) error {
	return s.publish(ctx, ChannelEvents, event)
}

func (s *SignalService) PublishFormDeleted(ctx context.Context, event domain.FormDeletedEvent) error {
	if err := s.publish(ctx, ChannelFormDeleted, event); err != nil {
		return err
	}
	// Realtime sessions watching the form also learn of the deletion.
	return s.publish(ctx, ChannelEvents, formhive.Event{
		Type:      formhive.EventFormDeleted,
		FormID:    event.FormID,
		UserID:    event.OwnerID,
		Timestamp: event.DeletedAt,
	})
}

func (s *SignalService) publish(ctx context.Context, channel string, event any) error {
	jsonstr, err := json.Marshal(event)
	if err != nil {
		return err
	}

	err = s.rdb.Publish(ctx, channel, jsonstr).Err()
	if err != nil {
		return err
	}

	return nil
}

// Realtime forwards form events to a websocket session. The input channel
// replaces the set of form ids the session listens to; matching events go
// out on output. Returns only when ctx is canceled or input closes, never
// by closing the channels: the session handler sends on input while this
// side sends on output.
func (s *SignalService) Realtime(ctx context.Context, input chan []uint, output chan formhive.Event) {
	pubsub := s.rdb.Subscribe(ctx, ChannelEvents)
	defer pubsub.Close()

	forwardEvents(ctx, pubsub.Channel(), input, output)
}

func forwardEvents(ctx context.Context, messages <-chan *redis.Message, input chan []uint, output chan formhive.Event) {
	listening := make(map[uint]bool)

	for {
		select {
		case <-ctx.Done():
			return
		case forms, ok := <-input:
			if !ok {
				return
			}
			listening = make(map[uint]bool, len(forms))
			for _, id := range forms {
				listening[id] = true
			}
		case msg, ok := <-messages:
			if !ok {
				return
			}
			var event formhive.Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				slog.ErrorContext(ctx, "failed to decode event",
					slog.String("error", err.Error()),
					slog.String("module", "signal"),
				)
				continue
			}
			if listening[event.FormID] {
				select {
				case output <- event:
				case <-ctx.Done():
					return
				}
			}
		}
	}
}
