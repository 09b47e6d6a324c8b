package usecase

import (
	"context"
	"errors"
	"sync"

	"github.com/wavenotes/wavenotes-api/shared/provider"
)

// recorderSender captures every OTP delivery instead of sending email.
type recorderSender struct {
	mu    sync.Mutex
	fail  bool
	sends []sentOTP
}

type sentOTP struct {
	to   string
	code string
}

func (s *recorderSender) SendOTP(_ context.Context, to, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fail {
		return errors.New("smtp unavailable")
	}

	s.sends = append(s.sends, sentOTP{to: to, code: code})

	return nil
}

func (s *recorderSender) lastCode() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.sends) == 0 {
		return ""
	}

	return s.sends[len(s.sends)-1].code
}

func (s *recorderSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.sends)
}

// stubVerifier returns a fixed identity or a verification failure.
type stubVerifier struct {
	identity *provider.GoogleIdentity
	err      error
}

func (v *stubVerifier) Verify(_ context.Context, _ string) (*provider.GoogleIdentity, error) {
	if v.err != nil {
		return nil, v.err
	}

	return v.identity, nil
}
