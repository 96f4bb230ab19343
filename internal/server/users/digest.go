package users

import (
	"crypto/subtle"

	"golang.org/x/crypto/argon2"
)

// argon2id parameters. Changing any of these invalidates every stored
// digest, so treat them as part of the journal format.
const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	argonKeyLen  = 32
)

// Digest derives the stored digest for a (name, password) pair using
// argon2id. The user name acts as the per-user salt, so identical passwords
// under different names yield different digests, and the derivation stays
// deterministic for a fixed pair.
func Digest(name string, password []byte) []byte {
	return argon2.IDKey(password, []byte(name), argonTime, argonMemory, argonThreads, argonKeyLen)
}

// MatchDigest compares a precomputed candidate digest against the user's
// stored one in constant time. Callers that must not hold a lock across the
// expensive derivation compute the candidate first and compare here.
func MatchDigest(u *User, candidate []byte) bool {
	return subtle.ConstantTimeCompare(u.Digest, candidate) == 1
}

// Verify reports whether the candidate password matches the user's stored
// digest.
func Verify(u *User, password []byte) bool {
	return MatchDigest(u, Digest(u.Name, password))
}
