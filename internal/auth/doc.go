// Package auth validates the bearer tokens that guard the fleet API.
//
// Tokens are HS256-signed JWTs carrying a subject and a role. Roles map to a
// fixed permission set:
//
//	viewer   -> fleet:read
//	operator -> fleet:read, fleet:write
//	admin    -> fleet:read, fleet:write
//
// Issuing tokens for real operators is left to an external identity
// provider; GenerateAccessToken exists for tooling and tests.
package auth
