package auth

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/Althra/SDSQL/pkg/lrucache"
)

// maxLiveSessions bounds the token cache. Reference semantics keep at
// most one live session per user (spec.4.4), so this bound is a safety
// valve against unbounded growth from abandoned logins rather than a
// limit expected to bite in normal operation.
const maxLiveSessions = 10000

// tokenLength is the byte length of the random token before hex
// encoding, per spec.9's requirement to replace the source's weak
// "token_" + counter scheme with a cryptographically random string.
const tokenLength = 32

// SessionManager maps issued session tokens to usernames. It is the
// Go-native stand-in for the source's single global current_token /
// is_logged_in globals, consolidated per spec.9 into owned state rather
// than package-level mutable variables.
type SessionManager struct {
	cache       lrucacheType
	userToToken map[string]string
}

// lrucacheType is the method set SessionManager uses from the cache
// lrucache.New returns, whose concrete type is unexported.
type lrucacheType = interface {
	Get(key string) (any, bool)
	Put(key string, value any)
	Delete(key string)
	Len() int
}

// NewSessionManager returns an empty session manager.
func NewSessionManager() *SessionManager {
	return &SessionManager{cache: lrucache.New(maxLiveSessions), userToToken: make(map[string]string)}
}

// Issue mints a fresh token for username, superseding any token
// previously issued to that user, per spec.4.4's single-session
// reference semantics.
func (m *SessionManager) Issue(username string) (string, error) {
	if old, ok := m.userToToken[username]; ok {
		m.cache.Delete(old)
	}

	buf := make([]byte, tokenLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	token := hex.EncodeToString(buf)

	m.cache.Put(token, username)
	m.userToToken[username] = token
	return token, nil
}

// Lookup resolves a token to its username, per spec.4.4's token -> user
// resolution. A token that was never issued or has been superseded
// returns ok=false, the trigger for a 401 ERROR_RESPONSE.
func (m *SessionManager) Lookup(token string) (username string, ok bool) {
	v, ok := m.cache.Get(token)
	if !ok {
		return "", false
	}
	return v.(string), true
}

// ActiveSessions reports how many sessions are currently live, for
// shutdown/diagnostic logging.
func (m *SessionManager) ActiveSessions() int {
	return m.cache.Len()
}

// Invalidate removes token's session, e.g. on logout or disconnect.
func (m *SessionManager) Invalidate(token string) {
	v, ok := m.cache.Get(token)
	if !ok {
		return
	}
	username := v.(string)
	m.cache.Delete(token)
	if m.userToToken[username] == token {
		delete(m.userToToken, username)
	}
}
