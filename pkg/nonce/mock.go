package nonce

import (
	"errors"
	"sync"

	"github.com/segmentio/ksuid"
)

// MockService is an in-memory Service without expiry, for tests.
type MockService struct {
	issued map[string]bool
	lock   sync.Mutex
}

func NewMockService() *MockService {
	return &MockService{
		issued: make(map[string]bool),
	}
}

func (s *MockService) Get() (string, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	nonceStr := ksuid.New().String()
	s.issued[nonceStr] = true
	return nonceStr, nil
}

func (s *MockService) Redeem(nonceStr string) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	if !s.issued[nonceStr] {
		return errors.New("nonce not found")
	}
	delete(s.issued, nonceStr)
	return nil
}
