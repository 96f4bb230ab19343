package users

// User is a registered account. Name doubles as the directory name of the
// user's file namespace and never changes after creation. Digest is the
// salted one-way derivation of the password; the password itself is never
// stored.
type User struct {
	Name   string `json:"name"`
	Digest []byte `json:"digest"`
}
