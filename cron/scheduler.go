package cron

import (
	"context"
	"errors"
	"fmt"
	"time"

	"companionhub/models"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// AsynqReminderScheduler enqueues booking reminders on the Redis queue DB.
type AsynqReminderScheduler struct {
	Client *asynq.Client
	Lead   time.Duration
	Logger *zap.Logger
	now    func() time.Time
}

func NewAsynqReminderScheduler(client *asynq.Client, lead time.Duration, logger *zap.Logger) *AsynqReminderScheduler {
	return &AsynqReminderScheduler{Client: client, Lead: lead, Logger: logger, now: time.Now}
}

// ScheduleReminder enqueues a reminder Lead before the booking starts.
// Bookings that already started are skipped; re-scheduling the same booking is a no-op.
func (s *AsynqReminderScheduler) ScheduleReminder(ctx context.Context, booking *models.Booking) error {
	fireAt, ok := reminderTime(booking.StartDate, s.Lead, s.now())
	if !ok {
		s.Logger.Debug("booking already started, no reminder", zap.String("bookingId", booking.ID))
		return nil
	}

	task, opts, err := NewReminderTask(booking, fireAt)
	if err != nil {
		return err
	}
	info, err := s.Client.EnqueueContext(ctx, task, opts...)
	if err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) {
			return nil
		}
		return fmt.Errorf("failed to enqueue reminder for booking %s: %w", booking.ID, err)
	}
	s.Logger.Info("reminder scheduled",
		zap.String("bookingId", booking.ID),
		zap.String("taskId", info.ID),
		zap.Time("fireAt", fireAt),
	)
	return nil
}
