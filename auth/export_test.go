package auth

import (
	"time"

	"golang.org/x/sync/semaphore"
)

func SetBrokerClock(b *Broker, now func() time.Time)    { b.now = now }
func SetServiceClock(s *Service, now func() time.Time)  { s.now = now }
func SetSignerClock(s *JWTSigner, now func() time.Time) { s.now = now }

func HasherSemaphore(h *BcryptHasher) *semaphore.Weighted { return h.sem }
