package testfixtures

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"sync/atomic"
)

// SessionTokens issues reproducible session tokens shaped like the server's
// 32-byte hex tokens. Each token is derived from the seed and a counter, so
// two sources with different seeds never collide.
type SessionTokens struct {
	seed   string
	issued atomic.Uint64
}

// NewSessionTokens returns a token source for seed.
func NewSessionTokens(seed string) *SessionTokens {
	return &SessionTokens{seed: seed}
}

// Generate returns the next token. It matches the token generator signature
// expected by application.AuthOptions.
func (s *SessionTokens) Generate() string {
	n := s.issued.Add(1)
	sum := sha256.Sum256([]byte(s.seed + "/" + strconv.FormatUint(n, 10)))
	return hex.EncodeToString(sum[:])
}

// Issued reports how many tokens have been handed out.
func (s *SessionTokens) Issued() uint64 {
	return s.issued.Load()
}
