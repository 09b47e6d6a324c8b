package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/wavenotes/wavenotes-api/internal/model"
)

// InMemoryUserRepository is a map-backed UserRepository that enforces the
// same uniqueness constraints as the mongo implementation: a unique index on
// email and a sparse unique index on google_id. It is used by tests and by
// local development without a database.
type InMemoryUserRepository struct {
	mu    sync.Mutex
	users map[string]*model.User
}

func NewInMemoryUserRepository() *InMemoryUserRepository {
	return &InMemoryUserRepository{users: make(map[string]*model.User)}
}

func (r *InMemoryUserRepository) CreateUser(_ context.Context, user *model.User) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, ErrDuplicateKey
		}
		if user.GoogleID != "" && u.GoogleID == user.GoogleID {
			return nil, ErrDuplicateKey
		}
	}

	now := time.Now()
	user.ID = bson.NewObjectID()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.users[user.ID.Hex()] = copyUser(user)

	return copyUser(user), nil
}

func (r *InMemoryUserRepository) GetUser(_ context.Context, id string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}

	return copyUser(user), nil
}

func (r *InMemoryUserRepository) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == email {
			return copyUser(u), nil
		}
	}

	return nil, ErrNotFound
}

func (r *InMemoryUserRepository) GetUserByGoogleID(_ context.Context, googleID string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.GoogleID != "" && u.GoogleID == googleID {
			return copyUser(u), nil
		}
	}

	return nil, ErrNotFound
}

func (r *InMemoryUserRepository) UpdateUser(
	_ context.Context,
	id string,
	params UpdateUserParams,
) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}

	if params.GoogleID != nil {
		for _, u := range r.users {
			if u.ID != user.ID && u.GoogleID != "" && u.GoogleID == *params.GoogleID {
				return nil, ErrDuplicateKey
			}
		}
		user.GoogleID = *params.GoogleID
	}
	if params.PasswordHash != nil {
		user.PasswordHash = *params.PasswordHash
	}
	if params.Verified != nil {
		user.Verified = *params.Verified
	}
	if params.OTP != nil {
		user.OTP = *params.OTP
	}
	if params.OTPExpiresAt != nil {
		expiresAt := *params.OTPExpiresAt
		user.OTPExpiresAt = &expiresAt
	}
	if params.ClearOTP {
		user.OTP = ""
		user.OTPExpiresAt = nil
	}
	user.UpdatedAt = time.Now()

	return copyUser(user), nil
}

func copyUser(u *model.User) *model.User {
	clone := *u
	if u.OTPExpiresAt != nil {
		expiresAt := *u.OTPExpiresAt
		clone.OTPExpiresAt = &expiresAt
	}
	if u.DateOfBirth != nil {
		dob := *u.DateOfBirth
		clone.DateOfBirth = &dob
	}

	return &clone
}

// InMemoryNoteRepository is a map-backed NoteRepository counterpart to
// InMemoryUserRepository.
type InMemoryNoteRepository struct {
	mu    sync.Mutex
	notes map[string]*model.Note
}

func NewInMemoryNoteRepository() *InMemoryNoteRepository {
	return &InMemoryNoteRepository{notes: make(map[string]*model.Note)}
}

func (r *InMemoryNoteRepository) CreateNote(_ context.Context, note *model.Note) (*model.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	note.ID = bson.NewObjectID()
	note.CreatedAt = now
	note.UpdatedAt = now

	clone := *note
	r.notes[note.ID.Hex()] = &clone

	return note, nil
}

func (r *InMemoryNoteRepository) GetNote(
	_ context.Context,
	id string,
	userID bson.ObjectID,
) (*model.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	note, ok := r.notes[id]
	if !ok || note.UserID != userID {
		return nil, ErrNotFound
	}

	clone := *note

	return &clone, nil
}

func (r *InMemoryNoteRepository) ListNotes(_ context.Context, userID bson.ObjectID) ([]*model.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var notes []*model.Note
	for _, n := range r.notes {
		if n.UserID == userID {
			clone := *n
			notes = append(notes, &clone)
		}
	}

	sort.Slice(notes, func(i, j int) bool {
		return notes[i].CreatedAt.After(notes[j].CreatedAt)
	})

	return notes, nil
}

func (r *InMemoryNoteRepository) UpdateNote(
	_ context.Context,
	id string,
	userID bson.ObjectID,
	params UpdateNoteParams,
) (*model.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	note, ok := r.notes[id]
	if !ok || note.UserID != userID {
		return nil, ErrNotFound
	}

	if params.Title != nil {
		note.Title = *params.Title
	}
	if params.Content != nil {
		note.Content = *params.Content
	}
	note.UpdatedAt = time.Now()

	clone := *note

	return &clone, nil
}

func (r *InMemoryNoteRepository) DeleteNote(
	_ context.Context,
	id string,
	userID bson.ObjectID,
) (*model.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	note, ok := r.notes[id]
	if !ok || note.UserID != userID {
		return nil, ErrNotFound
	}

	delete(r.notes, id)

	return note, nil
}
