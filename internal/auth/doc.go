// Package auth provides authentication and authorization for splitledger.
//
// # Authentication Methods
//
// Credentials arrive as an HTTP Basic pair whose username slot is overloaded:
//
//   - Signed Tokens: HS256 JWTs binding a principal id and issuance time,
//     valid for a bounded TTL (600s by default). Tokens are stateless; there
//     is no server-side revocation list. The password slot is ignored.
//
//   - Username/Password: The username is looked up and the password verified
//     against its stored bcrypt hash.
//
// The Gateway tries the token interpretation first and falls back to
// username/password. Every failure collapses into ErrUnauthenticated so the
// response reveals nothing about which path was attempted or why it failed.
//
// # Principal Propagation
//
// Authenticated principals are threaded through request contexts via
// WithPrincipal/PrincipalFromContext. There is no ambient current-user state.
//
// # Authorization
//
// Policy decides principal × operation × transaction. The shipped
// OwnerAgnosticPolicy authorizes any authenticated principal for any
// operation: the ledger is shared, and ownership is recorded on each record
// but deliberately not enforced as an access restriction.
package auth
