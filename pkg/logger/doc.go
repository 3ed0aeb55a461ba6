// Package logger builds the structured slog logger used across onair.
//
// Records are written as JSON (or text) and, when a Sentry DSN is set,
// forwarded to Sentry as well. Context extractors add request-scoped
// attributes such as the request id to every record:
//
//	log, flush := logger.New(cfg, logger.RequestIDExtractor())
//	defer flush()
//
//	ctx = logger.WithRequestID(ctx, id)
//	log.InfoContext(ctx, "translation locale loaded", "locale", "en")
//
// Libraries take a *slog.Logger option and default to [NewNope].
package logger
