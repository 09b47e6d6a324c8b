package repository

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/wavenotes/wavenotes-api/internal/model"
)

// UserRepository defines the interface for user-related database operations.
type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) (*model.User, error)
	GetUser(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByGoogleID(ctx context.Context, googleID string) (*model.User, error)
	UpdateUser(ctx context.Context, id string, params UpdateUserParams) (*model.User, error)
}

// UpdateUserParams defines the optional parameters for updating a user.
// Only the fields that are not nil will be updated. ClearOTP removes any
// pending OTP challenge from the record.
type UpdateUserParams struct {
	PasswordHash *string
	GoogleID     *string
	Verified     *bool
	OTP          *string
	OTPExpiresAt *time.Time
	ClearOTP     bool
}

const userCollection = "users"

type userMongoRepository struct {
	db *mongo.Database
}

// NewUserMongoRepository creates the users collection indexes and returns a
// mongo-backed UserRepository. Email is globally unique; google_id is
// sparse-unique so that accounts without a linked Google identity do not
// collide.
func NewUserMongoRepository(ctx context.Context, logger *zerolog.Logger, db *mongo.Database) UserRepository {
	collection := db.Collection(userCollection)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "google_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create user indexes")
	}

	return &userMongoRepository{db: db}
}

func (r *userMongoRepository) CreateUser(ctx context.Context, user *model.User) (*model.User, error) {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	result, err := r.db.Collection(userCollection).InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicateKey
		}

		return nil, err
	}

	if objectID, ok := result.InsertedID.(bson.ObjectID); ok {
		user.ID = objectID
	} else {
		return nil, errors.New("failed to convert inserted ID to ObjectID")
	}

	return user, nil
}

func (r *userMongoRepository) GetUser(ctx context.Context, id string) (*model.User, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	return r.findOne(ctx, bson.M{"_id": objectID})
}

func (r *userMongoRepository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *userMongoRepository) GetUserByGoogleID(ctx context.Context, googleID string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"google_id": googleID})
}

func (r *userMongoRepository) UpdateUser(
	ctx context.Context,
	id string,
	params UpdateUserParams,
) (*model.User, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	setMap := bson.M{}
	if params.PasswordHash != nil {
		setMap["password_hash"] = *params.PasswordHash
	}
	if params.GoogleID != nil {
		setMap["google_id"] = *params.GoogleID
	}
	if params.Verified != nil {
		setMap["verified"] = *params.Verified
	}
	if params.OTP != nil {
		setMap["otp"] = *params.OTP
	}
	if params.OTPExpiresAt != nil {
		setMap["otp_expires_at"] = *params.OTPExpiresAt
	}
	setMap["updated_at"] = time.Now()

	update := bson.M{"$set": setMap}
	if params.ClearOTP {
		update["$unset"] = bson.M{"otp": "", "otp_expires_at": ""}
	}

	result := r.db.Collection(userCollection).FindOneAndUpdate(
		ctx,
		bson.M{"_id": objectID},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	if result.Err() != nil {
		if errors.Is(result.Err(), mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		if mongo.IsDuplicateKeyError(result.Err()) {
			return nil, ErrDuplicateKey
		}

		return nil, result.Err()
	}

	var user model.User
	if err := result.Decode(&user); err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *userMongoRepository) findOne(ctx context.Context, filter bson.M) (*model.User, error) {
	result := r.db.Collection(userCollection).FindOne(ctx, filter)
	if result.Err() != nil {
		if errors.Is(result.Err(), mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}

		return nil, result.Err()
	}

	var user model.User
	if err := result.Decode(&user); err != nil {
		return nil, err
	}

	return &user, nil
}
