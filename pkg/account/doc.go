// Package account holds the user identity record and drives it through the
// three-step registration flow: personal information, credentials, profile.
// Steps are strictly ordered; replaying or skipping a step fails without
// mutating the account. Accounts are never deleted, deactivation only flips
// the active flag.
package account
