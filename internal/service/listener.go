package service

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/formhive/formhive/internal/domain"
	"github.com/formhive/formhive/internal/usecase"
)

// CascadeListener consumes form-deleted events and transitions the deleted
// form's submissions to REMOVED_BY_OWNER. Processing is at-most-once: a
// failed batch is logged and dropped, never retried.
type CascadeListener struct {
	rdb         *redis.Client
	submissions usecase.SubmissionRepository
}

func NewCascadeListener(redisClient *redis.Client, submissions usecase.SubmissionRepository) *CascadeListener {
	return &CascadeListener{
		rdb:         redisClient,
		submissions: submissions,
	}
}

// Run blocks consuming events until ctx is done.
func (l *CascadeListener) Run(ctx context.Context) {
	pubsub := l.rdb.Subscribe(ctx, ChannelFormDeleted)
	defer pubsub.Close()

	slog.InfoContext(ctx, "cascade listener started",
		slog.String("channel", ChannelFormDeleted),
		slog.String("module", "cascade"),
	)

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-pubsub.Channel():
			if !ok {
				return
			}
			var event domain.FormDeletedEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				slog.ErrorContext(ctx, "failed to decode form deletion event",
					slog.String("error", err.Error()),
					slog.String("module", "cascade"),
				)
				continue
			}
			l.HandleFormDeleted(ctx, event)
		}
	}
}

// HandleFormDeleted marks every submission of the deleted form in one
// transaction, stamping the deleting owner and the deletion time.
func (l *CascadeListener) HandleFormDeleted(ctx context.Context, event domain.FormDeletedEvent) {
	slog.InfoContext(ctx, "processing form deletion event",
		slog.Uint64("formId", uint64(event.FormID)),
		slog.String("module", "cascade"),
	)

	updated, err := l.submissions.MarkRemovedByOwner(ctx, event.FormID, event.OwnerID, event.DeletedAt)
	if err != nil {
		slog.ErrorContext(ctx, "failed to update submissions for deleted form",
			slog.String("error", err.Error()),
			slog.Uint64("formId", uint64(event.FormID)),
			slog.String("module", "cascade"),
		)
		return
	}

	slog.InfoContext(ctx, "updated submissions for deleted form",
		slog.Int64("count", updated),
		slog.Uint64("formId", uint64(event.FormID)),
		slog.String("module", "cascade"),
	)
}
