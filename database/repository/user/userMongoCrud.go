// File: database/repository/user/userMongoCrud.go
package userRepo

import (
	"context"
	"fmt"
	"time"

	"companionhub/database/repository"
	"companionhub/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Create inserts a new user document.
func (r *MongoUserRepo) Create(ctx context.Context, user *models.User) error {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// Save replaces an existing user document, keeping the stored password hash
// when the given user carries none.
func (r *MongoUserRepo) Save(ctx context.Context, user *models.User) error {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	user.UpdatedAt = time.Now()
	set, err := toSetDocument(user)
	if err != nil {
		return err
	}
	if user.PasswordHash == "" {
		delete(set, "password_hash")
	}

	result, err := r.coll.UpdateOne(ctx, bson.M{"id": user.ID}, bson.M{"$set": set})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("failed to update user with id %s: %w", user.ID, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("user with id %s not found", user.ID)
	}
	return nil
}

func toSetDocument(user *models.User) (bson.M, error) {
	raw, err := bson.Marshal(user)
	if err != nil {
		return nil, fmt.Errorf("failed to encode user: %w", err)
	}
	var set bson.M
	if err := bson.Unmarshal(raw, &set); err != nil {
		return nil, fmt.Errorf("failed to encode user: %w", err)
	}
	return set, nil
}

// Update applies a partial update and returns the document after it.
func (r *MongoUserRepo) Update(ctx context.Context, id string, update UserUpdate) (*models.User, error) {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	set := bson.M{"updated_at": time.Now()}
	unset := bson.M{}
	if update.Name != nil {
		set["name"] = *update.Name
	}
	if update.Phone != nil {
		if *update.Phone == "" {
			unset["phone"] = ""
		} else {
			set["phone"] = *update.Phone
		}
	}
	if update.DateOfBirth != nil {
		set["date_of_birth"] = *update.DateOfBirth
	}
	if update.Gender != nil {
		set["gender"] = *update.Gender
	}
	if update.Preferences != nil {
		set["preferences"] = *update.Preferences
	}
	if update.PricePerHour != nil {
		set["price_per_hour"] = *update.PricePerHour
	}
	if update.IsVerified != nil {
		set["is_verified"] = *update.IsVerified
	}
	if update.IsActive != nil {
		set["is_active"] = *update.IsActive
	}
	if update.LastActive != nil {
		set["last_active"] = *update.LastActive
	}

	doc := bson.M{"$set": set}
	if len(unset) > 0 {
		doc["$unset"] = unset
	}

	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(safeProjection)

	var user models.User
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"id": id}, doc, opts).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, repository.ErrDuplicate
		}
		return nil, fmt.Errorf("failed to update user with id %s: %w", id, err)
	}
	return &user, nil
}

// AddRating recomputes the running average server-side so concurrent
// ratings cannot lose updates.
func (r *MongoUserRepo) AddRating(ctx context.Context, id string, score int) error {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"ratings.average": bson.M{"$divide": bson.A{
				bson.M{"$add": bson.A{
					bson.M{"$multiply": bson.A{
						bson.M{"$ifNull": bson.A{"$ratings.average", 0}},
						bson.M{"$ifNull": bson.A{"$ratings.count", 0}},
					}},
					score,
				}},
				bson.M{"$add": bson.A{bson.M{"$ifNull": bson.A{"$ratings.count", 0}}, 1}},
			}},
			"ratings.count": bson.M{"$add": bson.A{bson.M{"$ifNull": bson.A{"$ratings.count", 0}}, 1}},
			"updated_at":    time.Now(),
		}}},
	}

	result, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, pipeline)
	if err != nil {
		return fmt.Errorf("failed to add rating for user %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("user with id %s not found", id)
	}
	return nil
}
