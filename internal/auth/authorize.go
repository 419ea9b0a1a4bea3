package auth

// Authorize resolves token to a user and checks that the user may
// perform wireOp (a wire.Operation value) against (objectType deduced
// from the operation, objectName), per spec.4.4's query-authorization
// contract. It returns the resolved User on success.
func (m *SessionManager) Authorize(store *Store, token string, wireOp int, objectName string) (*User, error) {
	username, ok := m.Lookup(token)
	if !ok {
		return nil, ErrInvalidToken
	}
	user := store.Get(username)
	if user == nil {
		return nil, ErrInvalidToken
	}

	op, objType, known := requiredPermission(wireOp)
	if !known {
		return user, nil
	}
	if !user.Allows(op, objType, objectName) {
		return nil, ErrPermissionDenied
	}
	return user, nil
}
