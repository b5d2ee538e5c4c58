// Package secure provides one-way credential encoding. The domain never
// encodes or decodes anything itself; it only asks an Encoder whether a
// plaintext matches a stored encoding.
package secure

// Encoder is the credential encoding contract. Hash produces an opaque
// encoding of the plaintext; Matches verifies a plaintext against it.
// Encodings are never reversible.
type Encoder interface {
	Hash(plain string) (string, error)
	Matches(plain, encoded string) bool
}
