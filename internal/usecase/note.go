package usecase

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/wavenotes/wavenotes-api/internal/model"
	"github.com/wavenotes/wavenotes-api/internal/repository"
)

// NoteUsecase defines the interface for note-related use cases. Every
// operation is scoped to the owning user; a note belonging to another user
// behaves exactly like a missing one.
type NoteUsecase interface {
	CreateNote(ctx context.Context, userID bson.ObjectID, title, content string) (*model.Note, error)
	GetNote(ctx context.Context, userID bson.ObjectID, id string) (*model.Note, error)
	ListNotes(ctx context.Context, userID bson.ObjectID) ([]*model.Note, error)
	UpdateNote(ctx context.Context, userID bson.ObjectID, id string, params UpdateNoteParams) (*model.Note, error)
	DeleteNote(ctx context.Context, userID bson.ObjectID, id string) error
}

// UpdateNoteParams defines the optional parameters for updating a note.
type UpdateNoteParams struct {
	Title   *string
	Content *string
}

var ErrNoteNotFound = errors.New("note not found")

type noteUsecase struct {
	noteRepo repository.NoteRepository
}

// NewNoteUsecase constructs a NoteUsecase.
func NewNoteUsecase(noteRepo repository.NoteRepository) NoteUsecase {
	return &noteUsecase{noteRepo: noteRepo}
}

func (u *noteUsecase) CreateNote(
	ctx context.Context,
	userID bson.ObjectID,
	title, content string,
) (*model.Note, error) {
	return u.noteRepo.CreateNote(ctx, &model.Note{
		Title:   strings.TrimSpace(title),
		Content: strings.TrimSpace(content),
		UserID:  userID,
	})
}

func (u *noteUsecase) GetNote(
	ctx context.Context,
	userID bson.ObjectID,
	id string,
) (*model.Note, error) {
	note, err := u.noteRepo.GetNote(ctx, id, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoteNotFound
		}

		return nil, err
	}

	return note, nil
}

func (u *noteUsecase) ListNotes(ctx context.Context, userID bson.ObjectID) ([]*model.Note, error) {
	return u.noteRepo.ListNotes(ctx, userID)
}

func (u *noteUsecase) UpdateNote(
	ctx context.Context,
	userID bson.ObjectID,
	id string,
	params UpdateNoteParams,
) (*model.Note, error) {
	repoParams := repository.UpdateNoteParams{}
	if params.Title != nil {
		title := strings.TrimSpace(*params.Title)
		if title != "" {
			repoParams.Title = &title
		}
	}
	if params.Content != nil {
		content := strings.TrimSpace(*params.Content)
		repoParams.Content = &content
	}

	note, err := u.noteRepo.UpdateNote(ctx, id, userID, repoParams)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoteNotFound
		}

		return nil, err
	}

	return note, nil
}

func (u *noteUsecase) DeleteNote(ctx context.Context, userID bson.ObjectID, id string) error {
	if _, err := u.noteRepo.DeleteNote(ctx, id, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNoteNotFound
		}

		return err
	}

	return nil
}
