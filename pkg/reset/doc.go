// Package reset implements password reset and username recovery on one
// shared state machine, discriminated by a type tag.
//
// A reset record carries both a six digit code for the challenge and an
// opaque high-entropy token for the final action. The token is generated at
// creation but only revealed to the caller after the code challenge
// succeeds, and it can be consumed exactly once. Requesting a reset never
// reveals whether the email is known.
package reset
