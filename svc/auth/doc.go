// Package auth implements passwordless authentication with emailed one-time codes.
//
// CreateAccount and SignIn send a six digit code to the user's email. Only
// the bcrypt hash of the code is stored, keyed by account id, and it expires
// after fifteen minutes. VerifySecret accepts a code once, allows a limited
// number of wrong guesses, and starts a session. Code requests are rate
// limited per email.
//
// Resolver turns the session carried by a request into a users.User.
package auth
