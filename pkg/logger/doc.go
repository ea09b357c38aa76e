// Package logger builds *slog.Logger instances for the service.
//
// New applies functional options (format, level, static attributes) and wraps
// the resulting handler so that request-scoped attributes are added through
// ContextExtractor callbacks. Outside development, email attributes are
// masked (see MaskEmail). The attribute helpers in
// attr.go keep key names consistent across packages (file_id, user_id,
// request_id and so on).
//
// # Usage
//
//	log := logger.New(
//		logger.WithEnvironment(cfg.Env, "filevault"),
//		logger.WithContextExtractors(
//			requestid.LoggerExtractor(),
//		),
//	)
//	log.InfoContext(ctx, "file shared", logger.FileID(id), logger.Email(email))
package logger
