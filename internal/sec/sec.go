// Package sec provides credential and authentication primitives for the
// intake backend.
//
// # Credentials
//
// Passwords are never stored. Each account holds a 16-byte random salt and the
// PBKDF2-HMAC-SHA256 key (100,000 iterations, 256 bits) derived from the
// password and that salt, both base64 encoded. Verification re-derives the key
// and compares it in constant time.
//
// Derivation is intentionally expensive. [Hasher] bounds how many run at once
// and is the only path the rest of the module uses to derive keys.
//
// # Authentication
//
// [Authenticator.Login] is stateless: no token or cookie is issued, so every
// call re-checks the password. Unknown accounts are answered with a decoy
// derivation (see [Hasher.Decoy]) so they take as long as a wrong password.
// The account lookup itself is not equalized, which leaves a small residual
// timing difference.
//
// # Components
//
//   - [GenerateSalt], [DeriveKey], [Verify]: the raw primitives
//   - [Credential]: the stored text form of a password
//   - [Hasher]: concurrency-bounded derivation
//   - [Authenticator]: the login façade
//   - [Password]: a plaintext value that redacts itself in logs
package sec
