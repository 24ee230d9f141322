// Package descrypt implements the traditional DES-based Unix crypt(3)
// password hash: a 2-character salt followed by 11 characters encoding 25
// rounds of salt-perturbed DES over a zero block, keyed by the first eight
// password characters.
package descrypt

import "errors"

var ErrBadSalt = errors.New("descrypt: salt must be two characters from [./0-9A-Za-z]")

const alphabet = "./0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// Permutation tables per FIPS 46-3. Entries are 1-based source bit positions,
// most significant bit first.
var (
	ip = [64]byte{
		58, 50, 42, 34, 26, 18, 10, 2, 60, 52, 44, 36, 28, 20, 12, 4,
		62, 54, 46, 38, 30, 22, 14, 6, 64, 56, 48, 40, 32, 24, 16, 8,
		57, 49, 41, 33, 25, 17, 9, 1, 59, 51, 43, 35, 27, 19, 11, 3,
		61, 53, 45, 37, 29, 21, 13, 5, 63, 55, 47, 39, 31, 23, 15, 7,
	}

	fp = [64]byte{
		40, 8, 48, 16, 56, 24, 64, 32, 39, 7, 47, 15, 55, 23, 63, 31,
		38, 6, 46, 14, 54, 22, 62, 30, 37, 5, 45, 13, 53, 21, 61, 29,
		36, 4, 44, 12, 52, 20, 60, 28, 35, 3, 43, 11, 51, 19, 59, 27,
		34, 2, 42, 10, 50, 18, 58, 26, 33, 1, 41, 9, 49, 17, 57, 25,
	}

	expansion = [48]byte{
		32, 1, 2, 3, 4, 5, 4, 5, 6, 7, 8, 9, 8, 9, 10, 11, 12, 13,
		12, 13, 14, 15, 16, 17, 16, 17, 18, 19, 20, 21, 20, 21, 22, 23, 24, 25,
		24, 25, 26, 27, 28, 29, 28, 29, 30, 31, 32, 1,
	}

	pbox = [32]byte{
		16, 7, 20, 21, 29, 12, 28, 17, 1, 15, 23, 26, 5, 18, 31, 10,
		2, 8, 24, 14, 32, 27, 3, 9, 19, 13, 30, 6, 22, 11, 4, 25,
	}

	pc1 = [56]byte{
		57, 49, 41, 33, 25, 17, 9, 1, 58, 50, 42, 34, 26, 18,
		10, 2, 59, 51, 43, 35, 27, 19, 11, 3, 60, 52, 44, 36,
		63, 55, 47, 39, 31, 23, 15, 7, 62, 54, 46, 38, 30, 22,
		14, 6, 61, 53, 45, 37, 29, 21, 13, 5, 28, 20, 12, 4,
	}

	pc2 = [48]byte{
		14, 17, 11, 24, 1, 5, 3, 28, 15, 6, 21, 10,
		23, 19, 12, 4, 26, 8, 16, 7, 27, 20, 13, 2,
		41, 52, 31, 37, 47, 55, 30, 40, 51, 45, 33, 48,
		44, 49, 39, 56, 34, 53, 46, 42, 50, 36, 29, 32,
	}

	shifts = [16]byte{1, 1, 2, 2, 2, 2, 2, 2, 1, 2, 2, 2, 2, 2, 2, 1}

	sbox = [8][64]byte{
		{
			14, 4, 13, 1, 2, 15, 11, 8, 3, 10, 6, 12, 5, 9, 0, 7,
			0, 15, 7, 4, 14, 2, 13, 1, 10, 6, 12, 11, 9, 5, 3, 8,
			4, 1, 14, 8, 13, 6, 2, 11, 15, 12, 9, 7, 3, 10, 5, 0,
			15, 12, 8, 2, 4, 9, 1, 7, 5, 11, 3, 14, 10, 0, 6, 13,
		},
		{
			15, 1, 8, 14, 6, 11, 3, 4, 9, 7, 2, 13, 12, 0, 5, 10,
			3, 13, 4, 7, 15, 2, 8, 14, 12, 0, 1, 10, 6, 9, 11, 5,
			0, 14, 7, 11, 10, 4, 13, 1, 5, 8, 12, 6, 9, 3, 2, 15,
			13, 8, 10, 1, 3, 15, 4, 2, 11, 6, 7, 12, 0, 5, 14, 9,
		},
		{
			10, 0, 9, 14, 6, 3, 15, 5, 1, 13, 12, 7, 11, 4, 2, 8,
			13, 7, 0, 9, 3, 4, 6, 10, 2, 8, 5, 14, 12, 11, 15, 1,
			13, 6, 4, 9, 8, 15, 3, 0, 11, 1, 2, 12, 5, 10, 14, 7,
			1, 10, 13, 0, 6, 9, 8, 7, 4, 15, 14, 3, 11, 5, 2, 12,
		},
		{
			7, 13, 14, 3, 0, 6, 9, 10, 1, 2, 8, 5, 11, 12, 4, 15,
			13, 8, 11, 5, 6, 15, 0, 3, 4, 7, 2, 12, 1, 10, 14, 9,
			10, 6, 9, 0, 12, 11, 7, 13, 15, 1, 3, 14, 5, 2, 8, 4,
			3, 15, 0, 6, 10, 1, 13, 8, 9, 4, 5, 11, 12, 7, 2, 14,
		},
		{
			2, 12, 4, 1, 7, 10, 11, 6, 8, 5, 3, 15, 13, 0, 14, 9,
			14, 11, 2, 12, 4, 7, 13, 1, 5, 0, 15, 10, 3, 9, 8, 6,
			4, 2, 1, 11, 10, 13, 7, 8, 15, 9, 12, 5, 6, 3, 0, 14,
			11, 8, 12, 7, 1, 14, 2, 13, 6, 15, 0, 9, 10, 4, 5, 3,
		},
		{
			12, 1, 10, 15, 9, 2, 6, 8, 0, 13, 3, 4, 14, 7, 5, 11,
			10, 15, 4, 2, 7, 12, 9, 5, 6, 1, 13, 14, 0, 11, 3, 8,
			9, 14, 15, 5, 2, 8, 12, 3, 7, 0, 4, 10, 1, 13, 11, 6,
			4, 3, 2, 12, 9, 5, 15, 10, 11, 14, 1, 7, 6, 0, 8, 13,
		},
		{
			4, 11, 2, 14, 15, 0, 8, 13, 3, 12, 9, 7, 5, 10, 6, 1,
			13, 0, 11, 7, 4, 9, 1, 10, 14, 3, 5, 12, 2, 15, 8, 6,
			1, 4, 11, 13, 12, 3, 7, 14, 10, 15, 6, 8, 0, 5, 9, 2,
			6, 11, 13, 8, 1, 4, 10, 7, 9, 5, 0, 15, 14, 2, 3, 12,
		},
		{
			13, 2, 8, 4, 6, 15, 11, 1, 10, 9, 3, 14, 5, 0, 12, 7,
			1, 15, 13, 8, 10, 3, 7, 4, 12, 5, 6, 11, 0, 14, 9, 2,
			7, 11, 4, 1, 9, 12, 14, 2, 0, 6, 10, 13, 15, 3, 5, 8,
			2, 1, 14, 7, 4, 10, 8, 13, 15, 12, 9, 0, 3, 5, 6, 11,
		},
	}
)

func permute(bits []byte, table []byte) []byte {
	out := make([]byte, len(table))
	for i, t := range table {
		out[i] = bits[t-1]
	}
	return out
}

func rotate(b []byte, s byte) []byte {
	out := make([]byte, 0, len(b))
	out = append(out, b[s:]...)
	return append(out, b[:s]...)
}

func keySchedule(key []byte) [16][]byte {
	cd := permute(key, pc1[:])
	c, d := cd[:28], cd[28:]
	var subkeys [16][]byte
	for i, s := range shifts {
		c = rotate(c, s)
		d = rotate(d, s)
		subkeys[i] = permute(append(append([]byte{}, c...), d...), pc2[:])
	}
	return subkeys
}

func feistel(right, subkey, etable []byte) []byte {
	er := permute(right, etable)
	out := make([]byte, 0, 32)
	for i := 0; i < 8; i++ {
		chunk := er[6*i : 6*i+6]
		k := subkey[6*i : 6*i+6]
		b0 := chunk[0] ^ k[0]
		b1 := chunk[1] ^ k[1]
		b2 := chunk[2] ^ k[2]
		b3 := chunk[3] ^ k[3]
		b4 := chunk[4] ^ k[4]
		b5 := chunk[5] ^ k[5]
		row := b0<<1 | b5
		col := b1<<3 | b2<<2 | b3<<1 | b4
		v := sbox[i][row*16+col]
		out = append(out, v>>3&1, v>>2&1, v>>1&1, v&1)
	}
	return permute(out, pbox[:])
}

func encrypt(block []byte, subkeys [16][]byte, etable []byte) []byte {
	bits := permute(block, ip[:])
	l, r := bits[:32], bits[32:]
	for _, k := range subkeys {
		f := feistel(r, k, etable)
		nr := make([]byte, 32)
		for i := range nr {
			nr[i] = l[i] ^ f[i]
		}
		l, r = r, nr
	}
	return permute(append(append([]byte{}, r...), l...), fp[:])
}

// saltedExpansion perturbs the expansion table: each set bit of the 12-bit
// salt swaps a pair of entries 24 positions apart.
func saltedExpansion(salt int) []byte {
	e := make([]byte, len(expansion))
	copy(e, expansion[:])
	for i := 0; i < 12; i++ {
		if salt>>i&1 == 1 {
			e[i], e[i+24] = e[i+24], e[i]
		}
	}
	return e
}

func lookup(c byte) int {
	switch {
	case c == '.':
		return 0
	case c == '/':
		return 1
	case c >= '0' && c <= '9':
		return int(c-'0') + 2
	case c >= 'A' && c <= 'Z':
		return int(c-'A') + 12
	case c >= 'a' && c <= 'z':
		return int(c-'a') + 38
	}
	return -1
}

// Crypt hashes password with the given salt and returns the 13-character
// crypt(3) string. Only the first two salt characters and the first eight
// password characters are significant.
func Crypt(password, salt string) (string, error) {
	if len(salt) < 2 {
		return "", ErrBadSalt
	}
	s0, s1 := lookup(salt[0]), lookup(salt[1])
	if s0 < 0 || s1 < 0 {
		return "", ErrBadSalt
	}

	// 64-bit key from the first 8 password bytes, low 7 bits each, shifted
	// past the parity position.
	key := make([]byte, 64)
	for i := 0; i < 8; i++ {
		var ch byte
		if i < len(password) {
			ch = password[i] << 1
		}
		for b := 0; b < 8; b++ {
			key[8*i+b] = ch >> (7 - b) & 1
		}
	}
	subkeys := keySchedule(key)
	etable := saltedExpansion(s0 | s1<<6)

	block := make([]byte, 64)
	for i := 0; i < 25; i++ {
		block = encrypt(block, subkeys, etable)
	}

	out := make([]byte, 0, 13)
	out = append(out, salt[0], salt[1])
	padded := append(block, 0, 0)
	for i := 0; i < 11; i++ {
		v := 0
		for _, b := range padded[6*i : 6*i+6] {
			v = v<<1 | int(b)
		}
		out = append(out, alphabet[v])
	}
	return string(out), nil
}
