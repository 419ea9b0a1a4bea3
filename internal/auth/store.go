package auth

import (
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/Althra/SDSQL/internal/storage"
	"github.com/Althra/SDSQL/internal/wire"
	"github.com/Althra/SDSQL/pkg/bitwise"
)

// SystemDatabase is the storage.Backend namespace the user store
// persists under, kept separate from any user-visible database per
// spec.6's "users and permissions are process-wide" lifecycle note.
const SystemDatabase = "__system__"

const (
	usersTable       = "users"
	permissionsTable = "permissions"
)

// Store is the process-wide user/permission store, persisted through the
// same storage.Backend the query engine uses. Users and permissions
// survive a server restart, per spec.3's Session/User lifecycle note.
type Store struct {
	mu         sync.RWMutex
	users      map[string]*User
	nextUserID uint32
	backend    storage.Backend
	logger     *zap.Logger
}

// firstAssignableUserID is the lowest id handed to a non-admin user,
// chosen to sit just above AdminUserID per spec S1's reserved 1001.
const firstAssignableUserID uint32 = 1002

// NewStore loads (or initializes) the user store from backend,
// creating the default admin user with adminPassword if absent, per
// spec.6's server-startup contract.
func NewStore(backend storage.Backend, adminPassword string, logger *zap.Logger) (*Store, error) {
	s := &Store{users: make(map[string]*User), nextUserID: firstAssignableUserID, backend: backend, logger: logger}

	if err := s.load(); err != nil {
		if _, ok := err.(*storage.NotFoundError); !ok {
			return nil, err
		}
		if err := backend.CreateDatabase(SystemDatabase); err != nil {
			return nil, err
		}
	}

	if _, ok := s.users[AdminUsername]; !ok {
		admin, err := NewUser(AdminUsername, AdminUserID, adminPassword, true)
		if err != nil {
			return nil, err
		}
		s.users[AdminUsername] = admin
		if err := s.persist(); err != nil {
			return nil, err
		}
		logger.Info("default admin user created")
	}

	return s, nil
}

func (s *Store) load() error {
	usersData, err := s.backend.LoadTable(SystemDatabase, usersTable)
	if err != nil {
		return err
	}
	for _, row := range usersData.Rows {
		if len(row) != 4 {
			continue
		}
		id, _ := strconv.ParseUint(row[1], 10, 32)
		isAdmin, _ := strconv.ParseBool(row[3])
		s.users[row[0]] = &User{Name: row[0], ID: uint32(id), PasswordHash: row[2], Permissions: NewPermissionSet(), IsAdmin: isAdmin}
		if uint32(id) >= s.nextUserID {
			s.nextUserID = uint32(id) + 1
		}
	}

	permsData, err := s.backend.LoadTable(SystemDatabase, permissionsTable)
	if err != nil {
		if _, ok := err.(*storage.NotFoundError); ok {
			return nil
		}
		return err
	}
	for _, row := range permsData.Rows {
		if len(row) != 4 {
			continue
		}
		username, opStr, objType, objName := row[0], row[1], row[2], row[3]
		opIdx, err := strconv.Atoi(opStr)
		if err != nil {
			continue
		}
		if u, ok := s.users[username]; ok {
			u.Permissions.Grant(Op(opIdx), ObjectType(objType), objName)
		}
	}
	return nil
}

// persist performs a truncate-and-rewrite of both system tables,
// matching the engine's own commit semantics (spec.9's chosen resolution
// for the source's contradictory commit drafts).
func (s *Store) persist() error {
	userCols := []storage.ColumnDef{
		{Name: "name", Type: wire.TypeString, IsPrimary: true},
		{Name: "id", Type: wire.TypeInt},
		{Name: "password_hash", Type: wire.TypeString},
		{Name: "is_admin", Type: wire.TypeBool},
	}
	var userRows [][]string
	permCols := []storage.ColumnDef{
		{Name: "username", Type: wire.TypeString},
		{Name: "op", Type: wire.TypeInt},
		{Name: "object_type", Type: wire.TypeString},
		{Name: "object_name", Type: wire.TypeString},
	}
	var permRows [][]string

	for _, u := range s.users {
		userRows = append(userRows, []string{u.Name, strconv.Itoa(int(u.ID)), u.PasswordHash, strconv.FormatBool(u.IsAdmin)})
		for key, mask := range u.Permissions.masks {
			for op := Op(0); op < numOps; op++ {
				if !bitwise.IsSet(mask, int(op)) {
					continue
				}
				permRows = append(permRows, []string{u.Name, strconv.Itoa(int(op)), string(key.objectType), key.objectName})
			}
		}
	}

	if err := s.backend.SaveTable(SystemDatabase, &storage.TableData{Name: usersTable, Columns: userCols, Rows: userRows}); err != nil {
		return err
	}
	return s.backend.SaveTable(SystemDatabase, &storage.TableData{Name: permissionsTable, Columns: permCols, Rows: permRows})
}

// CreateUser adds a new user with no permissions, per the source's
// createUserInternal.
func (s *Store) CreateUser(name, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[name]; ok {
		return ErrUserAlreadyExists
	}
	u, err := NewUser(name, s.nextUserID, password, false)
	if err != nil {
		return err
	}
	s.nextUserID++
	s.users[name] = u
	if err := s.persist(); err != nil {
		return err
	}
	s.logger.Info("user created", zap.String("user", name))
	return nil
}

// DropUser removes a user and its permissions.
func (s *Store) DropUser(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[name]; !ok {
		return ErrUserNotFound
	}
	delete(s.users, name)
	if err := s.persist(); err != nil {
		return err
	}
	s.logger.Info("user dropped", zap.String("user", name))
	return nil
}

// Grant records a permission for an existing user.
func (s *Store) Grant(username string, op Op, objectType ObjectType, objectName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[username]
	if !ok {
		return ErrUserNotFound
	}
	u.Permissions.Grant(op, objectType, objectName)
	return s.persist()
}

// Revoke removes a previously granted permission.
func (s *Store) Revoke(username string, op Op, objectType ObjectType, objectName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[username]
	if !ok {
		return ErrUserNotFound
	}
	u.Permissions.Revoke(op, objectType, objectName)
	return s.persist()
}

// Authenticate verifies (username, password) against the store and
// returns the matching User on success, per spec.4.4's login contract.
func (s *Store) Authenticate(username, password string) (*User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[username]
	if !ok || !u.VerifyPassword(password) {
		return nil, false
	}
	return u, true
}

// Get returns the named user, or nil if it does not exist.
func (s *Store) Get(name string) *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.users[name]
}
