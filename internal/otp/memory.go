package otp

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/linemk/checkout-service/internal/domain/errs"
	"github.com/linemk/checkout-service/internal/domain/models"
)

// MemoryStore - хранилище кодов в памяти процесса.
type MemoryStore struct {
	mu         sync.Mutex
	challenges map[string]models.OTPChallenge
	verified   map[string]time.Time // email -> до какого момента действует отметка
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		challenges: make(map[string]models.OTPChallenge),
		verified:   make(map[string]time.Time),
	}
}

func (s *MemoryStore) SaveChallenge(_ context.Context, c models.OTPChallenge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.challenges[c.Email] = c
	return nil
}

func (s *MemoryStore) ConsumeChallenge(_ context.Context, email, code string, now, verifiedUntil time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.challenges[email]
	if !ok {
		return errs.ErrNoChallenge
	}
	if err := c.Check(code, now); err != nil {
		if errors.Is(err, errs.ErrExpired) {
			delete(s.challenges, email)
		}
		return err
	}

	delete(s.challenges, email)
	s.verified[email] = verifiedUntil
	return nil
}

func (s *MemoryStore) DeleteChallenge(_ context.Context, email, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.challenges[email]; ok && c.Code == code {
		delete(s.challenges, email)
	}
	return nil
}

func (s *MemoryStore) IsVerified(_ context.Context, email string, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	until, ok := s.verified[email]
	return ok && !now.After(until), nil
}

func (s *MemoryStore) ClearVerified(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.verified, email)
	return nil
}

func (s *MemoryStore) PurgeExpired(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	deleted := 0
	for email, c := range s.challenges {
		if c.Expired(now) {
			delete(s.challenges, email)
			deleted++
		}
	}
	for email, until := range s.verified {
		if now.After(until) {
			delete(s.verified, email)
			deleted++
		}
	}
	return deleted, nil
}

// Len - число живых кодов (для метрик и тестов)
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.challenges)
}
