package payload

import "time"

// CreateNoteRequest is the body of POST /api/notes.
type CreateNoteRequest struct {
	Title   string `json:"title"   validate:"required,max=100"`
	Content string `json:"content" validate:"max=5000"`
}

// UpdateNoteRequest is the body of PUT /api/notes/{id}. Absent fields keep
// their current value.
type UpdateNoteRequest struct {
	Title   *string `json:"title"   validate:"omitempty,max=100"`
	Content *string `json:"content" validate:"omitempty,max=5000"`
}

// NoteView is the public representation of a note.
type NoteView struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
