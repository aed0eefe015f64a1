// Package password provides the bcrypt credential verifier consumed by the
// authentication entry point. The rest of the system depends only on the
// verify(plaintext, storedHash) → bool contract.
package password
