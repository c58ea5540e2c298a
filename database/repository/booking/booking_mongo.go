package bookingRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"companionhub/database/repository"
	"companionhub/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// MongoBookingRepo implements BookingRepository using MongoDB.
type MongoBookingRepo struct {
	coll *mongo.Collection
}

// NewMongoBookingRepo constructs a new instance of MongoBookingRepo.
func NewMongoBookingRepo(db *mongo.Database, logger *zap.Logger) BookingRepository {
	repo := &MongoBookingRepo{coll: db.Collection("bookings")}
	if err := repo.ensureIndexes(); err != nil {
		logger.Warn("failed to create booking indexes", zap.Error(err))
	}
	return repo
}

// ensureIndexes mirrors the access paths: by seeker, by companion, by status, by start.
func (repo *MongoBookingRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "event_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "companion_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "start_date", Value: 1}}},
	}
	if _, err := repo.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

func filterDocument(filter BookingFilter) bson.M {
	doc := bson.M{}
	if filter.UserID != "" {
		doc["user_id"] = filter.UserID
	}
	if filter.CompanionID != "" {
		doc["companion_id"] = filter.CompanionID
	}
	if filter.Status != "" {
		doc["status"] = filter.Status
	}
	return doc
}

// Create inserts a new booking document.
func (repo *MongoBookingRepo) Create(ctx context.Context, booking *models.Booking) error {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	if _, err := repo.coll.InsertOne(ctx, booking); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("error creating booking: %w", err)
	}
	return nil
}

// GetByID retrieves a booking by its ID.
func (repo *MongoBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	var booking models.Booking
	if err := repo.coll.FindOne(ctx, bson.M{"id": id}).Decode(&booking); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("error fetching booking %s: %w", id, err)
	}
	return &booking, nil
}

// Find lists bookings newest first.
func (repo *MongoBookingRepo) Find(ctx context.Context, filter BookingFilter, page, limit int) ([]models.Booking, error) {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "id", Value: -1}}).
		SetSkip(repository.Page(page, limit)).
		SetLimit(int64(limit))

	cursor, err := repo.coll.Find(ctx, filterDocument(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("error finding bookings: %w", err)
	}
	defer cursor.Close(ctx)

	bookings := []models.Booking{}
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("error decoding bookings: %w", err)
	}
	return bookings, nil
}

// Count counts bookings matching filter.
func (repo *MongoBookingRepo) Count(ctx context.Context, filter BookingFilter) (int64, error) {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	n, err := repo.coll.CountDocuments(ctx, filterDocument(filter))
	if err != nil {
		return 0, fmt.Errorf("error counting bookings: %w", err)
	}
	return n, nil
}

// UpdateDetails $sets the patched fields, filtered on the booking still
// being pending and, for window changes, still unpaid with no open payment.
func (repo *MongoBookingRepo) UpdateDetails(ctx context.Context, id string, patch DetailsPatch) (*models.Booking, error) {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	filter := bson.M{"id": id, "status": models.StatusPending}
	set := bson.M{"updated_at": patch.UpdatedAt}
	if patch.EventName != nil {
		set["event_name"] = *patch.EventName
	}
	if patch.EventType != nil {
		set["event_type"] = *patch.EventType
	}
	if patch.EventDescription != nil {
		set["event_description"] = *patch.EventDescription
	}
	if patch.MeetingPoint != nil {
		set["meeting_point"] = *patch.MeetingPoint
	}
	if patch.Notes != nil {
		set["notes"] = *patch.Notes
	}
	if w := patch.Window; w != nil {
		set["start_date"] = w.StartDate
		set["end_date"] = w.EndDate
		set["duration_hours"] = w.DurationHours
		set["total_price"] = w.TotalPrice
		set["commission_amount"] = w.CommissionAmount
		filter["payment_status"] = models.PaymentPending
		filter["payment_id"] = bson.M{"$in": bson.A{nil, ""}}
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var booking models.Booking
	err := repo.coll.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrConflict
		}
		return nil, fmt.Errorf("error updating booking %s: %w", id, err)
	}
	return &booking, nil
}

// SetRating writes the rating only if the booking is completed and unrated.
func (repo *MongoBookingRepo) SetRating(ctx context.Context, id string, rating models.BookingRating, updatedAt time.Time) (*models.Booking, error) {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	filter := bson.M{"id": id, "status": models.StatusCompleted, "rating": nil}
	update := bson.M{"$set": bson.M{"rating": rating, "updated_at": updatedAt}}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var booking models.Booking
	err := repo.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrConflict
		}
		return nil, fmt.Errorf("error rating booking %s: %w", id, err)
	}
	return &booking, nil
}

// UpdateStatus performs a compare-and-set on the status field.
func (repo *MongoBookingRepo) UpdateStatus(ctx context.Context, id string, from models.BookingStatus, change StatusChange) (*models.Booking, error) {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	set := bson.M{
		"status":     change.To,
		"updated_at": change.UpdatedAt,
	}
	if change.CancellationReason != "" {
		set["cancellation_reason"] = change.CancellationReason
	}
	if change.CancellationTime != nil {
		set["cancellation_time"] = *change.CancellationTime
	}
	if change.PaymentStatus != "" {
		set["payment_status"] = change.PaymentStatus
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var booking models.Booking
	err := repo.coll.FindOneAndUpdate(ctx, bson.M{"id": id, "status": from}, bson.M{"$set": set}, opts).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrConflict
		}
		return nil, fmt.Errorf("error updating booking %s status: %w", id, err)
	}
	return &booking, nil
}

// SetPayment writes the payment status and reference.
func (repo *MongoBookingRepo) SetPayment(ctx context.Context, id string, status models.PaymentStatus, paymentID string) (*models.Booking, error) {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	set := bson.M{"payment_status": status, "updated_at": time.Now()}
	if paymentID != "" {
		set["payment_id"] = paymentID
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var booking models.Booking
	err := repo.coll.FindOneAndUpdate(ctx, bson.M{"id": id}, bson.M{"$set": set}, opts).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("error updating booking %s payment: %w", id, err)
	}
	return &booking, nil
}
