package account

import "time"

// ExternalSentinel replaces the password field of records whose credentials
// are owned by an external realm. It can never verify as a password, so such
// records are unauthenticatable locally.
const ExternalSentinel = "#externalAccount"

type Type string

const (
	TypeLocal    Type = "local"
	TypeExternal Type = "external"
)

// UserRecord is the persisted identity for one user. The htpasswd realm only
// reads and writes Cookie, Type and Password; everything else belongs to the
// backing store and its callers.
type UserRecord struct {
	Username    string    `json:"username"`
	Password    string    `json:"password,omitempty"`
	Cookie      string    `json:"cookie,omitempty"`
	Type        Type      `json:"type"`
	DisplayName string    `json:"display_name,omitempty"`
	Roles       []string  `json:"roles,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func NewUserRecord(username string) *UserRecord {
	now := time.Now().UTC()
	return &UserRecord{
		Username:  username,
		Type:      TypeLocal,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (u *UserRecord) IsExternal() bool {
	return u.Type == TypeExternal || u.Password == ExternalSentinel
}
