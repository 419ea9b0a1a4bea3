package auth

import "golang.org/x/crypto/bcrypt"

// AdminUsername is the one built-in user guaranteed to exist, per
// spec.6's default-credentials note.
const AdminUsername = "admin"

// AdminUserID is the admin user's fixed identifier, per spec S1's
// LOGIN_SUCCESS{user_id=1001} scenario.
const AdminUserID uint32 = 1001

// User is one entry of the user store: a name, a bcrypt password hash,
// its granted permissions, and the numeric id returned in LOGIN_SUCCESS,
// per spec.3.
type User struct {
	Name         string
	ID           uint32
	PasswordHash string
	Permissions  *PermissionSet
	IsAdmin      bool
}

// NewUser hashes password with bcrypt and returns a User with an empty
// permission set. Password hashing uses bcrypt rather than the source's
// plaintext comparison - spec.4.4 only requires credential verification
// on match, not a specific hashing scheme, and bcrypt is the ecosystem's
// standard choice for this.
func NewUser(name string, id uint32, password string, isAdmin bool) (*User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return &User{Name: name, ID: id, PasswordHash: string(hash), Permissions: NewPermissionSet(), IsAdmin: isAdmin}, nil
}

// VerifyPassword reports whether password matches the user's stored
// hash.
func (u *User) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// Allows reports whether u may perform op on (objectType, objectName).
// Admin users always authorize, per spec.4.4.
func (u *User) Allows(op Op, objectType ObjectType, objectName string) bool {
	if u.IsAdmin {
		return true
	}
	return u.Permissions.Allows(op, objectType, objectName)
}
