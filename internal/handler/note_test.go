package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wavenotes/wavenotes-api/shared/provider"
)

// authenticate registers and verifies an account through the public
// endpoints and returns its bearer token.
func authenticate(t *testing.T, s *testServer, email string) string {
	t.Helper()

	rec := s.do(t, http.MethodPost, "/api/auth/register", validRegisterBody(email), nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/auth/verify-otp", map[string]string{
		"email": email,
		"otp":   s.sender.lastCode(),
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	token, ok := decodeBody(t, rec)["token"].(string)
	require.True(t, ok)
	require.NotEmpty(t, token)

	return token
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func TestNotes_RequireAuthentication(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/notes/", nil, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Access denied. No token provided.", decodeBody(t, rec)["message"])
}

func TestNotes_CreateAndList(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	token := authenticate(t, s, "a@b.com")

	rec := s.do(t, http.MethodPost, "/api/notes/", map[string]string{
		"title":   "First",
		"content": "hello",
	}, bearer(token))
	require.Equal(t, http.StatusCreated, rec.Code)

	created := decodeBody(t, rec)
	assert.Equal(t, "First", created["title"])
	require.NotEmpty(t, created["id"])

	rec = s.do(t, http.MethodGet, "/api/notes/", nil, bearer(token))
	require.Equal(t, http.StatusOK, rec.Code)

	var notes []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &notes))
	require.Len(t, notes, 1)
	assert.Equal(t, "First", notes[0]["title"])
}

func TestNotes_CreateRequiresTitle(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	token := authenticate(t, s, "a@b.com")

	rec := s.do(t, http.MethodPost, "/api/notes/", map[string]string{"content": "hello"}, bearer(token))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNotes_UpdateAndDelete(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	token := authenticate(t, s, "a@b.com")

	rec := s.do(t, http.MethodPost, "/api/notes/", map[string]string{"title": "First"}, bearer(token))
	require.Equal(t, http.StatusCreated, rec.Code)
	id, ok := decodeBody(t, rec)["id"].(string)
	require.True(t, ok)

	rec = s.do(t, http.MethodPut, "/api/notes/"+id, map[string]string{"title": "Renamed"}, bearer(token))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Renamed", decodeBody(t, rec)["title"])

	rec = s.do(t, http.MethodDelete, "/api/notes/"+id, nil, bearer(token))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Note deleted successfully", decodeBody(t, rec)["message"])

	rec = s.do(t, http.MethodGet, "/api/notes/"+id, nil, bearer(token))
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Note not found", decodeBody(t, rec)["message"])
}

func TestNotes_ForeignNoteIsNotFound(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	ownerToken := authenticate(t, s, "owner@b.com")

	s.verifier.identity = &provider.GoogleIdentity{Subject: "sub-1", Email: "other@b.com"}
	rec := s.do(t, http.MethodPost, "/api/auth/google/verify", map[string]string{"credential": "token"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	otherToken, ok := decodeBody(t, rec)["token"].(string)
	require.True(t, ok)

	rec = s.do(t, http.MethodPost, "/api/notes/", map[string]string{"title": "Private"}, bearer(ownerToken))
	require.Equal(t, http.StatusCreated, rec.Code)
	id, ok := decodeBody(t, rec)["id"].(string)
	require.True(t, ok)

	rec = s.do(t, http.MethodGet, "/api/notes/"+id, nil, bearer(otherToken))
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodDelete, "/api/notes/"+id, nil, bearer(otherToken))
	require.Equal(t, http.StatusNotFound, rec.Code)

	// Still there for the owner.
	rec = s.do(t, http.MethodGet, "/api/notes/"+id, nil, bearer(ownerToken))
	require.Equal(t, http.StatusOK, rec.Code)
}
