// Package environment carries the application environment (development,
// staging, production) through context.Context and structured logs.
package environment
