package descrypt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Expected values generated with glibc crypt(3).
func TestCryptKnownVectors(t *testing.T) {
	cases := []struct {
		password string
		salt     string
		want     string
	}{
		{"abc", "ab", "abFZSxKKdq5s6"},
		{"bobpass", "hY", "hY6V6LIy/t/hI"},
		{"trustno1", "Vx", "VxNppDV.5iFDQ"},
		{"", "xy", "xyw1.V0rbu5mQ"},
		{"secret123", "./", "./VASzoL7KZi."},
		{"p4ss w0rd", "A9", "A9vYddh8Pz0Mg"},
		{"x", "..", "..RnkxVxZKSmo"},
	}
	for _, c := range cases {
		got, err := Crypt(c.password, c.salt)
		require.NoError(t, err, "Crypt(%q, %q)", c.password, c.salt)
		assert.Equal(t, c.want, got, "Crypt(%q, %q)", c.password, c.salt)
	}
}

func TestCryptTruncatesPasswordToEightChars(t *testing.T) {
	long, err := Crypt("verylongpassword", "Zz")
	require.NoError(t, err)
	short, err := Crypt("verylong", "Zz")
	require.NoError(t, err)
	assert.Equal(t, short, long)
	assert.Equal(t, "ZzaGq1X64h1eU", long)
}

func TestCryptSaltHandling(t *testing.T) {
	_, err := Crypt("abc", "a")
	assert.ErrorIs(t, err, ErrBadSalt)
	_, err = Crypt("abc", "")
	assert.ErrorIs(t, err, ErrBadSalt)
	_, err = Crypt("abc", "!!")
	assert.ErrorIs(t, err, ErrBadSalt)

	// Extra salt characters beyond the first two are ignored, as when the
	// caller passes a full hash as the salt.
	full, err := Crypt("abc", "abFZSxKKdq5s6")
	require.NoError(t, err)
	assert.Equal(t, "abFZSxKKdq5s6", full)
}

func TestCryptDistinctResults(t *testing.T) {
	a, err := Crypt("abc", "ab")
	require.NoError(t, err)
	b, err := Crypt("abd", "ab")
	require.NoError(t, err)
	assert.NotEqual(t, a, b, "different passwords must hash differently")

	c, err := Crypt("abc", "ba")
	require.NoError(t, err)
	assert.NotEqual(t, a[2:], c[2:], "different salts must hash differently")
}
