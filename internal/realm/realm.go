// Package realm implements an authentication realm backed by an Apache
// htpasswd file. Accounts found in the file are authenticated against it
// ("external" accounts); everything else is delegated to a backing account
// service, which also owns all user data beyond the password.
package realm

import (
	"errors"

	"github.com/realmkit/htrealm/internal/account"
	"github.com/realmkit/htrealm/internal/auth"
	"github.com/realmkit/htrealm/internal/htpasswd"
	"github.com/realmkit/htrealm/internal/logger"
)

// ErrCredentialChangesUnsupported is returned for any attempt to change a
// credential through this realm. The htpasswd file is read-only here; edit
// it with the htpasswd utility instead.
var ErrCredentialChangesUnsupported = errors.New("realm: htpasswd credentials are read-only")

// AccountService is the backing store the realm delegates to: locality
// verdicts, record persistence, and the whole authenticate call for local
// accounts.
type AccountService interface {
	IsLocalAccount(username string) bool
	GetUserModel(username string) (*account.UserRecord, error)
	UpdateUserModel(rec *account.UserRecord) error
	Authenticate(username, password string) (*account.UserRecord, error)
}

type Realm struct {
	backing       AccountService
	creds         *htpasswd.Store
	overrideLocal bool
}

// New builds a realm over the given backing service and credential store.
// overrideLocal makes presence in the credential file win over the backing
// store's locality verdict.
func New(backing AccountService, creds *htpasswd.Store, overrideLocal bool) *Realm {
	return &Realm{backing: backing, creds: creds, overrideLocal: overrideLocal}
}

// CredentialStore exposes the underlying htpasswd cache, for startup
// logging and the change watcher.
func (r *Realm) CredentialStore() *htpasswd.Store { return r.creds }

// SupportsCredentialChanges is always false: the credential file is never
// written by this realm.
func (r *Realm) SupportsCredentialChanges() bool { return false }

// SetPassword rejects all credential mutation.
func (r *Realm) SetPassword(username, password string) error {
	return ErrCredentialChangesUnsupported
}

// IsLocal decides whether username is authenticated by the backing store.
// With overrideLocal set, an entry in the credential file turns the account
// external even if the backing store considers it local.
func (r *Realm) IsLocal(username string) bool {
	if r.overrideLocal {
		if err := r.creds.EnsureFresh(); err != nil {
			logger.Error("realm: %v", err)
		}
		if r.creds.Contains(username) {
			return false
		}
	}
	return r.backing.IsLocalAccount(username)
}

// Authenticate verifies username/password and returns the authenticated
// user record, or nil on any mismatch. Unknown users, wrong passwords and
// credential-file trouble all look the same to the caller.
func (r *Realm) Authenticate(username, password string) (*account.UserRecord, error) {
	if r.IsLocal(username) {
		return r.backing.Authenticate(username, password)
	}

	if err := r.creds.EnsureFresh(); err != nil {
		// Keep serving from the previous snapshot.
		logger.Error("realm: %v", err)
	}
	secret, ok := r.creds.Lookup(username)
	if !ok {
		return nil, nil
	}
	if !auth.VerifyPassword(secret, password) {
		return nil, nil
	}
	logger.Debug("realm: %s password matched for user %q", auth.Scheme(secret), username)

	rec, err := r.backing.GetUserModel(username)
	if err != nil {
		logger.Error("realm: loading record for %q: %v", username, err)
		rec = nil
	}
	if rec == nil {
		rec = account.NewUserRecord(username)
	}

	// Stamp the record external and hide the password from the backing
	// store; assign the session cookie on first login.
	rec.Type = account.TypeExternal
	rec.Password = account.ExternalSentinel
	if rec.Cookie == "" && password != "" {
		rec.Cookie = auth.UserCookie(username, password)
	}
	if err := r.backing.UpdateUserModel(rec); err != nil {
		logger.Error("realm: persisting record for %q: %v", username, err)
	}
	return rec, nil
}
