// Package scopes matches hierarchical permission strings such as
// "file.share" against granted patterns like "file.*" or "*".
package scopes
