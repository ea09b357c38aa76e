// Package users stores account holders.
//
// A user is found by primary id, by the legacy "id" attribute of imported
// documents, by account id (the value sessions carry) or by email. Emails
// are stored lowercased and are unique.
package users
