// Package requestid assigns a correlation id to each HTTP request and exposes
// it to handlers and structured logs.
package requestid
