package cron

import (
	"context"
	"encoding/json"
	"fmt"

	bookingRepo "companionhub/database/repository/booking"
	"companionhub/models"
	"companionhub/services/notification"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Worker handles reminder tasks.
type Worker struct {
	Bookings  bookingRepo.BookingRepository
	Publisher notification.Publisher
	Logger    *zap.Logger
}

// HandleReminder re-reads the booking and notifies both parties if it is
// still confirmed. Bookings cancelled in the meantime are skipped.
func (w *Worker) HandleReminder(ctx context.Context, task *asynq.Task) error {
	var p ReminderPayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		w.Logger.Error("invalid reminder payload", zap.Error(err))
		return fmt.Errorf("invalid reminder payload: %v: %w", err, asynq.SkipRetry)
	}

	booking, err := w.Bookings.GetByID(ctx, p.BookingID)
	if err != nil {
		return fmt.Errorf("failed to load booking %s: %w", p.BookingID, err)
	}
	if booking == nil || booking.Status != models.StatusConfirmed {
		w.Logger.Debug("skipping reminder", zap.String("bookingId", p.BookingID))
		return nil
	}

	event := notification.NewEvent(models.EventBookingReminder, booking)
	notification.PublishToUsers(ctx, w.Publisher, event, booking.UserID, booking.CompanionID)
	w.Logger.Info("reminder sent", zap.String("bookingId", booking.ID))
	return nil
}

// StartWorker runs the asynq server in the background. Call Shutdown on the
// returned server to stop it.
func StartWorker(redisOpt asynq.RedisClientOpt, worker *Worker, logger *zap.Logger) (*asynq.Server, error) {
	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: 10,
		Queues:      map[string]int{"default": 1},
		Logger:      logger.Sugar(),
	})

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeBookingReminder, worker.HandleReminder)

	if err := srv.Start(mux); err != nil {
		return nil, fmt.Errorf("failed to start reminder worker: %w", err)
	}
	logger.Info("reminder worker started")
	return srv, nil
}
