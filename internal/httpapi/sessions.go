package httpapi

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
)

// sessionStore keeps mock sessions in memory. Tokens are opaque; nothing in
// the ledger core reads them beyond existence.
type sessionStore struct {
	mu     sync.Mutex
	tokens map[string]string // token -> email
}

func newSessionStore() *sessionStore {
	return &sessionStore{tokens: make(map[string]string)}
}

func (ss *sessionStore) create(email string) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	token := hex.EncodeToString(buf)

	ss.mu.Lock()
	ss.tokens[token] = email
	ss.mu.Unlock()

	return token, nil
}

func (ss *sessionStore) lookup(token string) (string, bool) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	email, ok := ss.tokens[token]
	return email, ok
}
