package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/wavenotes/wavenotes-api/internal/middleware"
	"github.com/wavenotes/wavenotes-api/internal/model"
	"github.com/wavenotes/wavenotes-api/internal/payload"
	"github.com/wavenotes/wavenotes-api/internal/usecase"
	"github.com/wavenotes/wavenotes-api/shared/validator"
)

// NoteHandler exposes the ownership-scoped notes resource over HTTP. All
// routes assume the authentication middleware has attached a user.
type NoteHandler struct {
	logger      *zerolog.Logger
	validate    *validator.Validator
	noteUsecase usecase.NoteUsecase
}

// NewNoteHandler constructs a NoteHandler.
func NewNoteHandler(
	logger *zerolog.Logger,
	validate *validator.Validator,
	noteUsecase usecase.NoteUsecase,
) *NoteHandler {
	return &NoteHandler{
		logger:      logger,
		validate:    validate,
		noteUsecase: noteUsecase,
	}
}

// RegisterRoutes mounts the notes endpoints on the given router.
func (h *NoteHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

func (h *NoteHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Access denied. No token provided.")
		return
	}

	notes, err := h.noteUsecase.ListNotes(r.Context(), user.ID)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list notes")
		writeError(w, http.StatusInternalServerError, "Error fetching notes")

		return
	}

	views := make([]payload.NoteView, 0, len(notes))
	for _, note := range notes {
		views = append(views, noteView(note))
	}

	writeJSON(w, http.StatusOK, views)
}

func (h *NoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Access denied. No token provided.")
		return
	}

	var req payload.CreateNoteRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if fieldErrors := h.validate.Struct(req); fieldErrors != nil {
		writeValidationErrors(w, fieldErrors)
		return
	}

	note, err := h.noteUsecase.CreateNote(r.Context(), user.ID, req.Title, req.Content)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to create note")
		writeError(w, http.StatusInternalServerError, "Error creating note")

		return
	}

	writeJSON(w, http.StatusCreated, noteView(note))
}

func (h *NoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Access denied. No token provided.")
		return
	}

	note, err := h.noteUsecase.GetNote(r.Context(), user.ID, chi.URLParam(r, "id"))
	if err != nil {
		h.writeNoteError(w, err, "Error fetching note")
		return
	}

	writeJSON(w, http.StatusOK, noteView(note))
}

func (h *NoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Access denied. No token provided.")
		return
	}

	var req payload.UpdateNoteRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if fieldErrors := h.validate.Struct(req); fieldErrors != nil {
		writeValidationErrors(w, fieldErrors)
		return
	}

	note, err := h.noteUsecase.UpdateNote(r.Context(), user.ID, chi.URLParam(r, "id"), usecase.UpdateNoteParams{
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		h.writeNoteError(w, err, "Error updating note")
		return
	}

	writeJSON(w, http.StatusOK, noteView(note))
}

func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Access denied. No token provided.")
		return
	}

	if err := h.noteUsecase.DeleteNote(r.Context(), user.ID, chi.URLParam(r, "id")); err != nil {
		h.writeNoteError(w, err, "Error deleting note")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Note deleted successfully"})
}

func (h *NoteHandler) writeNoteError(w http.ResponseWriter, err error, fallback string) {
	if errors.Is(err, usecase.ErrNoteNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Note not found"})
		return
	}

	h.logger.Error().Err(err).Msg("note operation failed")
	writeError(w, http.StatusInternalServerError, fallback)
}

func noteView(note *model.Note) payload.NoteView {
	return payload.NoteView{
		ID:        note.ID.Hex(),
		Title:     note.Title,
		Content:   note.Content,
		UserID:    note.UserID.Hex(),
		CreatedAt: note.CreatedAt,
		UpdatedAt: note.UpdatedAt,
	}
}
