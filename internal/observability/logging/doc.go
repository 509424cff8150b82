// Package logging builds the crawler's slog loggers and carries them through
// a crawl on the context.
//
// Commands create one logger with New from the --log-format flag. The crawl
// service tags it with the run ID and stores it on the context, so scrapers
// and the fetcher log with the same run_id:
//
//	logger := logging.WithRunID(logging.New(logging.FormatText, os.Stderr), runID)
//	ctx = logging.WithLogger(ctx, logger)
//	...
//	logging.FromContext(ctx).Warn("skipping senator after failed fetch")
package logging
