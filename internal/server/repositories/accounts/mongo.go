package accounts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/profilekeeper/internal/common"
	"github.com/dmitrijs2005/profilekeeper/internal/server/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CollectionName is the MongoDB collection holding accounts.
const CollectionName = "accounts"

type MongoRepository struct {
	coll *mongo.Collection
}

func NewMongoRepository(coll *mongo.Collection) *MongoRepository {
	return &MongoRepository{coll: coll}
}

// EnsureIndexes creates the unique username and email indexes.
func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	if err != nil {
		return fmt.Errorf("create indexes: %w", err)
	}
	return nil
}

func (r *MongoRepository) Create(ctx context.Context, account *models.Account) (*models.Account, error) {
	if account.ID == "" {
		account.ID = uuid.NewString()
	}
	now := time.Now().UTC().Truncate(time.Millisecond)
	account.CreatedAt = now
	account.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, account); err != nil {
		return nil, mapMongoError(err)
	}
	return account, nil
}

func (r *MongoRepository) FindByID(ctx context.Context, id string) (*models.Account, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// FindByUsernameOrEmail prefers an account whose username matches over one
// whose email matches.
func (r *MongoRepository) FindByUsernameOrEmail(ctx context.Context, username, email string) (*models.Account, error) {
	a, err := r.findOne(ctx, bson.M{"username": username})
	if !errors.Is(err, common.ErrorNotFound) {
		return a, err
	}
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *MongoRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"username": username}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n > 0, nil
}

func (r *MongoRepository) Update(ctx context.Context, id string, u models.AccountUpdate) (*models.Account, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if u.FullName != nil {
		set["full_name"] = *u.FullName
	}
	if u.Email != nil {
		set["email"] = *u.Email
	}
	if u.AvatarURL != nil {
		set["avatar_url"] = *u.AvatarURL
	}
	if u.CoverImageURL != nil {
		set["cover_image_url"] = *u.CoverImageURL
	}
	if u.PasswordHash != nil {
		set["password_hash"] = *u.PasswordHash
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	a := &models.Account{}
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(a); err != nil {
		return nil, mapMongoError(err)
	}
	return a, nil
}

func (r *MongoRepository) SetRefreshToken(ctx context.Context, id, token string) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"refresh_token": token,
		"updated_at":    time.Now().UTC(),
	}})
	if err != nil {
		return mapMongoError(err)
	}
	if res.MatchedCount == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *MongoRepository) SwapRefreshToken(ctx context.Context, id, current, next string) (bool, error) {
	if current == "" {
		return false, nil
	}
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id, "refresh_token": current},
		bson.M{"$set": bson.M{"refresh_token": next, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return false, mapMongoError(err)
	}
	return res.MatchedCount == 1, nil
}

func (r *MongoRepository) findOne(ctx context.Context, filter any) (*models.Account, error) {
	a := &models.Account{}
	if err := r.coll.FindOne(ctx, filter).Decode(a); err != nil {
		return nil, mapMongoError(err)
	}
	return a, nil
}

func mapMongoError(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return common.ErrorNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%v: %w", err, common.ErrorConflict)
	}
	return fmt.Errorf("db error: %w", err)
}
