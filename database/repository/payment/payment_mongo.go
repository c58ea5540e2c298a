package paymentRepo

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

type MongoPaymentRepo struct {
	coll *mongo.Collection
}

func NewMongoPaymentRepo(db *mongo.Database, logger *zap.Logger) PaymentRepository {
	repo := &MongoPaymentRepo{coll: db.Collection("payments")}
	if err := repo.ensureIndexes(); err != nil {
		logger.Warn("failed to create payment indexes", zap.Error(err))
	}
	return repo
}

func (r *MongoPaymentRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
		{Keys: bson.D{{Key: "booking_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "payment_intent_id", Value: 1}}},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

func (r *MongoPaymentRepo) Create(ctx context.Context, payment *models.Payment) error {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, payment); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("error creating payment: %w", err)
	}
	return nil
}

func (r *MongoPaymentRepo) findOne(ctx context.Context, filter bson.M, opts ...*options.FindOneOptions) (*models.Payment, error) {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	var payment models.Payment
	if err := r.coll.FindOne(ctx, filter, opts...).Decode(&payment); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("error fetching payment: %w", err)
	}
	return &payment, nil
}

func (r *MongoPaymentRepo) GetByID(ctx context.Context, id string) (*models.Payment, error) {
	return r.findOne(ctx, bson.M{"id": id})
}

func (r *MongoPaymentRepo) LatestForBooking(ctx context.Context, bookingID string, status models.PaymentRecordStatus) (*models.Payment, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return r.findOne(ctx, bson.M{"booking_id": bookingID, "status": status}, opts)
}

func (r *MongoPaymentRepo) Save(ctx context.Context, payment *models.Payment) error {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	result, err := r.coll.ReplaceOne(ctx, bson.M{"id": payment.ID}, payment)
	if err != nil {
		return fmt.Errorf("error updating payment %s: %w", payment.ID, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("payment %s not found", payment.ID)
	}
	return nil
}
