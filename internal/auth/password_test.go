package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const (
	// htpasswd -p
	clearSecret = "bobpass"
	// htpasswd -s, SHA-1 of "password"
	shaSecret = "{SHA}W6ph5Mm5Pz8GgiULbPgzG37mj9g="
	// htpasswd -m (apr1) of "secret123"
	apr1Secret = "$apr1$z6yhUjN3$1t0jkfQU1J0yZ3mdkvaGV/"
	// htpasswd -d (crypt) of "abc" with salt "ab"
	cryptSecret = "abFZSxKKdq5s6"
)

func TestVerifyCleartext(t *testing.T) {
	assert.True(t, VerifyPassword(clearSecret, "bobpass"))
	assert.False(t, VerifyPassword(clearSecret, "wrong"))
	assert.False(t, VerifyPassword(clearSecret, "bobpas"))
	assert.False(t, VerifyPassword(clearSecret, "bobpass "))
}

func TestVerifyUnsaltedSHA(t *testing.T) {
	assert.True(t, VerifyPassword(shaSecret, "password"))
	assert.False(t, VerifyPassword(shaSecret, "password2"))
	assert.False(t, VerifyPassword(shaSecret, ""))
}

func TestVerifyApr1(t *testing.T) {
	assert.True(t, VerifyPassword(apr1Secret, "secret123"))
	assert.False(t, VerifyPassword(apr1Secret, "secret124"))
	assert.False(t, VerifyPassword(apr1Secret, "Secret123"))
}

func TestVerifyCrypt(t *testing.T) {
	assert.True(t, VerifyPassword(cryptSecret, "abc"))
	assert.False(t, VerifyPassword(cryptSecret, "abd"))
	assert.False(t, VerifyPassword(cryptSecret, "ab"))
}

// A stored secret equal to the literal candidate matches even when it
// carries a scheme prefix. Intentional ordering inherited from the file
// format's historical handling.
func TestCleartextCheckedFirst(t *testing.T) {
	assert.True(t, VerifyPassword(shaSecret, shaSecret))
	assert.True(t, VerifyPassword(apr1Secret, apr1Secret))
}

func TestVerifyDegenerateSecrets(t *testing.T) {
	assert.False(t, VerifyPassword("", "anything"))
	assert.False(t, VerifyPassword("x", "anything"))
	assert.False(t, VerifyPassword("{SHA}not-base64", "anything"))
	assert.False(t, VerifyPassword("$apr1$", "anything"))
	// Invalid crypt salt characters never match.
	assert.False(t, VerifyPassword("!!bogus", "anything"))
}

func TestScheme(t *testing.T) {
	assert.Equal(t, "apr1", Scheme(apr1Secret))
	assert.Equal(t, "sha1", Scheme(shaSecret))
	assert.Equal(t, "crypt", Scheme(cryptSecret))
	assert.Equal(t, "cleartext", Scheme(clearSecret))
}

func TestUserCookie(t *testing.T) {
	assert.Equal(t, "744b6203c9aef01c9c9a8563838c8f71767b15bc", UserCookie("alice", "password"))
	assert.Equal(t, "695856b410228e177d34e076170540f5d7ca7250", UserCookie("bob", "bobpass"))
	assert.NotEqual(t, UserCookie("alice", "a"), UserCookie("alice", "b"))
}
