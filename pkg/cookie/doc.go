// Package cookie writes HMAC-signed HTTP cookies.
//
// Values are stored as base64(value).base64(signature). Several secrets can be
// configured: the first signs new cookies and all of them are accepted when
// verifying, which allows rotating secrets without logging users out.
package cookie
