// Package sanitizer normalizes user input before it is validated or stored:
// email addresses (the identity key for sharing), email lists and file names.
package sanitizer
