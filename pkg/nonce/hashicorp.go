package nonce

import (
	"fmt"

	"github.com/hashicorp/go-secure-stdlib/nonceutil"
)

// HashicorpService implements Service on top of the hashicorp nonceutil
// in-memory nonce service. Values expire after the nonceutil default TTL,
// which bounds how long a login attempt may stay pending.
type HashicorpService struct {
	inner nonceutil.NonceService
}

func NewHashicorpService() (*HashicorpService, error) {
	inner := nonceutil.NewNonceService()
	if err := inner.Initialize(); err != nil {
		return nil, fmt.Errorf("could not initialize nonce service: %w", err)
	}
	return &HashicorpService{inner}, nil
}

func (s *HashicorpService) Get() (string, error) {
	nonceStr, _, err := s.inner.Get()
	if err != nil {
		return "", err
	}
	return nonceStr, nil
}

func (s *HashicorpService) Redeem(nonceStr string) error {
	if ok := s.inner.Redeem(nonceStr); !ok {
		return fmt.Errorf("nonce %s not found", nonceStr)
	}
	return nil
}
