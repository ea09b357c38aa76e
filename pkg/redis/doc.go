// Package redis connects to Redis and offers a small typed JSON key-value
// store used for sessions and one-time sign-in codes.
package redis
