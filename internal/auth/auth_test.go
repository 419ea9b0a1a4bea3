package auth

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Althra/SDSQL/internal/storage/memstore"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(memstore.New(), "123456", zap.NewNop())
	require.NoError(t, err)
	return store
}

func TestStore_DefaultAdminUser(t *testing.T) {
	store := newTestStore(t)
	user, ok := store.Authenticate(AdminUsername, "123456")
	require.True(t, ok)
	require.True(t, user.IsAdmin)
}

func TestStore_Authenticate_WrongPasswordFails(t *testing.T) {
	store := newTestStore(t)
	_, ok := store.Authenticate(AdminUsername, "wrong")
	require.False(t, ok)
}

func TestStore_Authenticate_UnknownUserFails(t *testing.T) {
	store := newTestStore(t)
	_, ok := store.Authenticate("nobody", "x")
	require.False(t, ok)
}

func TestStore_CreateUser_NoPermissionsByDefault(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.CreateUser("guest", "pw"))

	user, ok := store.Authenticate("guest", "pw")
	require.True(t, ok)
	require.False(t, user.IsAdmin)
	require.False(t, user.Allows(OpCreateDatabase, ObjectDatabase, "x"))
}

func TestStore_CreateUser_Duplicate(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.CreateUser("guest", "pw"))
	require.ErrorIs(t, store.CreateUser("guest", "pw"), ErrUserAlreadyExists)
}

func TestStore_GrantRevoke_Wildcard(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.CreateUser("guest", "pw"))
	require.NoError(t, store.Grant("guest", OpSelect, ObjectTable, ""))

	user := store.Get("guest")
	require.True(t, user.Allows(OpSelect, ObjectTable, "anything"))
	require.False(t, user.Allows(OpInsert, ObjectTable, "anything"))

	require.NoError(t, store.Revoke("guest", OpSelect, ObjectTable, ""))
	user = store.Get("guest")
	require.False(t, user.Allows(OpSelect, ObjectTable, "anything"))
}

func TestSessionManager_IssueAndLookup(t *testing.T) {
	m := NewSessionManager()
	token, err := m.Issue("admin")
	require.NoError(t, err)

	username, ok := m.Lookup(token)
	require.True(t, ok)
	require.Equal(t, "admin", username)
}

func TestSessionManager_NewLoginSupersedesOld(t *testing.T) {
	m := NewSessionManager()
	first, err := m.Issue("admin")
	require.NoError(t, err)

	second, err := m.Issue("admin")
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	_, ok := m.Lookup(first)
	require.False(t, ok)

	_, ok = m.Lookup(second)
	require.True(t, ok)
}

func TestSessionManager_UnknownTokenFails(t *testing.T) {
	m := NewSessionManager()
	_, ok := m.Lookup("never-issued")
	require.False(t, ok)
}

func TestAuthorize_AdminAlwaysAllowed(t *testing.T) {
	store := newTestStore(t)
	m := NewSessionManager()
	token, err := m.Issue(AdminUsername)
	require.NoError(t, err)

	user, err := m.Authorize(store, token, 0x01, "anydb")
	require.NoError(t, err)
	require.True(t, user.IsAdmin)
}

func TestAuthorize_S5_UnauthorizedGuestDenied(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.CreateUser("guest", "pw"))
	m := NewSessionManager()
	token, err := m.Issue("guest")
	require.NoError(t, err)

	_, err = m.Authorize(store, token, 0x01, "x")
	require.ErrorIs(t, err, ErrPermissionDenied)
}

func TestAuthorize_InvalidTokenReturns401Equivalent(t *testing.T) {
	store := newTestStore(t)
	m := NewSessionManager()

	_, err := m.Authorize(store, "bogus", 0x01, "x")
	require.ErrorIs(t, err, ErrInvalidToken)
}
