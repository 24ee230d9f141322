package auth

import (
	"crypto/sha1"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"strings"

	"github.com/GehirnInc/crypt/apr1_crypt"

	"github.com/realmkit/htrealm/internal/descrypt"
)

const (
	apr1Prefix = "$apr1$"
	shaPrefix  = "{SHA}"
)

// VerifyPassword reports whether candidate matches the stored htpasswd
// secret. All output formats of the htpasswd utility are supported: clear
// text, Apache MD5 (apr1), unsalted SHA-1 and libc crypt().
//
// Clear text is checked first, so a stored secret equal to the literal
// candidate matches regardless of any scheme prefix.
func VerifyPassword(stored, candidate string) bool {
	if stored == "" {
		return false
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(candidate)) == 1 {
		return true
	}
	switch {
	case strings.HasPrefix(stored, apr1Prefix):
		return apr1_crypt.New().Verify(stored, []byte(candidate)) == nil
	case strings.HasPrefix(stored, shaPrefix):
		sum := sha1.Sum([]byte(candidate))
		encoded := base64.StdEncoding.EncodeToString(sum[:])
		return subtle.ConstantTimeCompare([]byte(stored[len(shaPrefix):]), []byte(encoded)) == 1
	default:
		// Libc crypt(): the first two characters of the stored secret are
		// the salt.
		if len(stored) < 2 {
			return false
		}
		computed, err := descrypt.Crypt(candidate, stored[:2])
		if err != nil {
			return false
		}
		return subtle.ConstantTimeCompare([]byte(stored), []byte(computed)) == 1
	}
}

// Scheme names the apparent encoding of a stored secret. crypt(3) output is
// always 13 characters; anything else without a prefix is taken as clear
// text. Used for debug logging only, verification never consults it.
func Scheme(stored string) string {
	switch {
	case strings.HasPrefix(stored, apr1Prefix):
		return "apr1"
	case strings.HasPrefix(stored, shaPrefix):
		return "sha1"
	case len(stored) == 13:
		return "crypt"
	default:
		return "cleartext"
	}
}

// UserCookie derives the legacy session cookie for a user: the hex SHA-1 of
// username and password concatenated. Kept for compatibility with existing
// backing store records.
func UserCookie(username, password string) string {
	sum := sha1.Sum([]byte(username + password))
	return hex.EncodeToString(sum[:])
}
