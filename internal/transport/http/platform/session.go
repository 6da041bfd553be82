package platform

import (
	"context"
	"sync"
)

// Session хранит bearer-токен на время прогона.
// Токен берётся лениво один раз; после 401 сбрасывается и при следующем вызове запрашивается заново.
type Session struct {
	mu    sync.Mutex
	token string
	login func(ctx context.Context) (string, error)
}

func NewSession(login func(ctx context.Context) (string, error)) *Session {
	return &Session{login: login}
}

func (s *Session) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != "" {
		return s.token, nil
	}
	token, err := s.login(ctx)
	if err != nil {
		return "", err
	}
	s.token = token
	return token, nil
}

func (s *Session) Invalidate() {
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()
}
