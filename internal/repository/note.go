package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/wavenotes/wavenotes-api/internal/model"
)

// NoteRepository defines the interface for note-related database operations.
// Every lookup is scoped to the owning user.
type NoteRepository interface {
	CreateNote(ctx context.Context, note *model.Note) (*model.Note, error)
	GetNote(ctx context.Context, id string, userID bson.ObjectID) (*model.Note, error)
	ListNotes(ctx context.Context, userID bson.ObjectID) ([]*model.Note, error)
	UpdateNote(ctx context.Context, id string, userID bson.ObjectID, params UpdateNoteParams) (*model.Note, error)
	DeleteNote(ctx context.Context, id string, userID bson.ObjectID) (*model.Note, error)
}

// UpdateNoteParams defines the optional parameters for updating a note.
type UpdateNoteParams struct {
	Title   *string
	Content *string
}

const noteCollection = "notes"

type noteMongoRepository struct {
	db *mongo.Database
}

func NewNoteMongoRepository(db *mongo.Database) NoteRepository {
	return &noteMongoRepository{db: db}
}

func (r *noteMongoRepository) CreateNote(ctx context.Context, note *model.Note) (*model.Note, error) {
	now := time.Now()
	note.CreatedAt = now
	note.UpdatedAt = now

	result, err := r.db.Collection(noteCollection).InsertOne(ctx, note)
	if err != nil {
		return nil, err
	}

	if objectID, ok := result.InsertedID.(bson.ObjectID); ok {
		note.ID = objectID
	} else {
		return nil, errors.New("failed to convert inserted ID to ObjectID")
	}

	return note, nil
}

func (r *noteMongoRepository) GetNote(
	ctx context.Context,
	id string,
	userID bson.ObjectID,
) (*model.Note, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	result := r.db.Collection(noteCollection).FindOne(ctx, bson.M{"_id": objectID, "user_id": userID})
	if result.Err() != nil {
		if errors.Is(result.Err(), mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}

		return nil, result.Err()
	}

	var note model.Note
	if err := result.Decode(&note); err != nil {
		return nil, err
	}

	return &note, nil
}

func (r *noteMongoRepository) ListNotes(ctx context.Context, userID bson.ObjectID) ([]*model.Note, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.db.Collection(noteCollection).Find(ctx, bson.M{"user_id": userID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var notes []*model.Note
	for cursor.Next(ctx) {
		var note model.Note
		if err := cursor.Decode(&note); err != nil {
			return nil, err
		}
		notes = append(notes, &note)
	}

	if err := cursor.Err(); err != nil {
		return nil, err
	}

	return notes, nil
}

func (r *noteMongoRepository) UpdateNote(
	ctx context.Context,
	id string,
	userID bson.ObjectID,
	params UpdateNoteParams,
) (*model.Note, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	updateMap := bson.M{}
	if params.Title != nil {
		updateMap["title"] = *params.Title
	}
	if params.Content != nil {
		updateMap["content"] = *params.Content
	}
	updateMap["updated_at"] = time.Now()

	result := r.db.Collection(noteCollection).FindOneAndUpdate(
		ctx,
		bson.M{"_id": objectID, "user_id": userID},
		bson.M{"$set": updateMap},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	if result.Err() != nil {
		if errors.Is(result.Err(), mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}

		return nil, result.Err()
	}

	var note model.Note
	if err := result.Decode(&note); err != nil {
		return nil, err
	}

	return &note, nil
}

func (r *noteMongoRepository) DeleteNote(
	ctx context.Context,
	id string,
	userID bson.ObjectID,
) (*model.Note, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	result := r.db.Collection(noteCollection).FindOneAndDelete(ctx, bson.M{"_id": objectID, "user_id": userID})
	if result.Err() != nil {
		if errors.Is(result.Err(), mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}

		return nil, result.Err()
	}

	var note model.Note
	if err := result.Decode(&note); err != nil {
		return nil, err
	}

	return &note, nil
}
