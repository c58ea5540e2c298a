package cron

import (
	"encoding/json"
	"fmt"
	"time"

	"companionhub/models"

	"github.com/hibiken/asynq"
)

// TypeBookingReminder is the asynq task type for pre-start reminders.
const TypeBookingReminder = "booking:reminder"

// ReminderPayload identifies the booking to remind about.
type ReminderPayload struct {
	BookingID string    `json:"bookingId"`
	StartDate time.Time `json:"startDate"`
}

// reminderTime returns when the reminder should fire, and false when the
// booking starts before now.
func reminderTime(start time.Time, lead time.Duration, now time.Time) (time.Time, bool) {
	if !start.After(now) {
		return time.Time{}, false
	}
	at := start.Add(-lead)
	if at.Before(now) {
		at = now
	}
	return at, true
}

// reminderTaskID keeps one reminder per booking in the queue.
func reminderTaskID(bookingID string) string {
	return "reminder:" + bookingID
}

// NewReminderTask builds the task for booking and the time it should run at.
func NewReminderTask(booking *models.Booking, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	payload, err := json.Marshal(ReminderPayload{BookingID: booking.ID, StartDate: booking.StartDate})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode reminder payload: %w", err)
	}
	task := asynq.NewTask(TypeBookingReminder, payload)
	opts := []asynq.Option{
		asynq.ProcessAt(fireAt),
		asynq.TaskID(reminderTaskID(booking.ID)),
		asynq.MaxRetry(3),
	}
	return task, opts, nil
}
