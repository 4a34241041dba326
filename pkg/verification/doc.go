// Package verification implements ownership verification of email addresses
// and mobile numbers with short-lived six digit codes.
//
// A record moves through pending -> code_assigned -> verified or exhausted.
// Issuing a new code for an address invalidates any earlier active record, so
// at most one code per address and purpose is live at a time. Codes expire
// after a fixed window and tolerate a bounded number of wrong guesses.
package verification
