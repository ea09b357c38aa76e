// Package validator provides composable validation rules.
//
// Each rule captures the value at construction time and is evaluated by
// Apply, which collects every failure into ValidationErrors:
//
//	err := validator.Apply(
//		validator.RequiredString("fullName", req.FullName),
//		validator.MinLenString("fullName", req.FullName, 2),
//		validator.ValidEmail("email", req.Email),
//	)
//
// The HTTP layer renders ValidationErrors as a 422 response with per-field
// messages.
package validator
