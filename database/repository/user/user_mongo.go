package userRepo

import (
	"context"
	"errors"
	"fmt"

	"companionhub/database/repository"
	"companionhub/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// MongoUserRepo implements UserRepository using MongoDB.
type MongoUserRepo struct {
	coll *mongo.Collection
}

// NewMongoUserRepo creates a new instance of UserRepository using MongoDB.
func NewMongoUserRepo(db *mongo.Database, logger *zap.Logger) UserRepository {
	repo := &MongoUserRepo{coll: db.Collection("users")}

	if err := repo.ensureIndexes(); err != nil {
		logger.Warn("failed to create user indexes", zap.Error(err))
	}
	return repo
}

var safeProjection = bson.M{"password_hash": 0}

// findOne decodes the first match or returns (nil, nil).
func (r *MongoUserRepo) findOne(ctx context.Context, filter bson.M, projection bson.M) (*models.User, error) {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	opts := options.FindOne()
	if projection != nil {
		opts.SetProjection(projection)
	}

	var user models.User
	if err := r.coll.FindOne(ctx, filter, opts).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	return &user, nil
}

// GetByID retrieves a user by its unique ID without credential material.
func (r *MongoUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"id": id}, safeProjection)
}

// GetByEmailWithPassword retrieves the full document for credential checks.
func (r *MongoUserRepo) GetByEmailWithPassword(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email}, nil)
}

// GetByEmailOrPhone checks whether a user with the email or phone already exists.
func (r *MongoUserRepo) GetByEmailOrPhone(ctx context.Context, email, phone string) (*models.User, error) {
	or := []bson.M{{"email": email}}
	if phone != "" {
		or = append(or, bson.M{"phone": phone})
	}
	return r.findOne(ctx, bson.M{"$or": or}, safeProjection)
}

// GetSummaries fetches the display fields for a set of users in one query.
func (r *MongoUserRepo) GetSummaries(ctx context.Context, ids []string) (map[string]*models.UserSummary, error) {
	out := make(map[string]*models.UserSummary, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	opts := options.Find().SetProjection(bson.M{
		"id": 1, "name": 1, "email": 1, "phone": 1, "profile_image": 1,
	})
	cursor, err := r.coll.Find(ctx, bson.M{"id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user summaries: %w", err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var u models.User
		if err := cursor.Decode(&u); err != nil {
			return nil, fmt.Errorf("failed to decode user: %w", err)
		}
		out[u.ID] = u.Summary()
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return out, nil
}

func filterDocument(filter UserFilter) bson.M {
	doc := bson.M{}
	if filter.Role != "" {
		doc["role"] = filter.Role
	}
	if filter.VerifiedOnly {
		doc["is_verified"] = true
	}
	if filter.ActiveOnly {
		doc["is_active"] = true
	}
	return doc
}

// Find lists users matching filter, one page at a time.
func (r *MongoUserRepo) Find(ctx context.Context, filter UserFilter, page, limit int) ([]models.User, error) {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	sort := bson.D{{Key: "created_at", Value: -1}, {Key: "id", Value: -1}}
	if filter.SortByRating {
		sort = append(bson.D{{Key: "ratings.average", Value: -1}}, sort...)
	}
	opts := options.Find().
		SetProjection(safeProjection).
		SetSort(sort).
		SetSkip(repository.Page(page, limit)).
		SetLimit(int64(limit))

	cursor, err := r.coll.Find(ctx, filterDocument(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve users: %w", err)
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	return users, nil
}

// Count counts users matching filter.
func (r *MongoUserRepo) Count(ctx context.Context, filter UserFilter) (int64, error) {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	n, err := r.coll.CountDocuments(ctx, filterDocument(filter))
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}
