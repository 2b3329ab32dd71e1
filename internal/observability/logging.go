// Package observability provides metrics, tracing and repository logging helpers.
package observability

import (
	"context"
	"log/slog"
)

// RepoLogger provides structured logging for repository operations.
type RepoLogger struct {
	table  string
	logger *slog.Logger
}

// NewRepoLogger creates a RepoLogger for table writing to logger.
func NewRepoLogger(table string, logger *slog.Logger) *RepoLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &RepoLogger{table: table, logger: logger}
}

// LogWrite logs a successful create or update.
func (l *RepoLogger) LogWrite(ctx context.Context, operation, id string) {
	l.logger.DebugContext(ctx, "repository write",
		slog.String("table", l.table),
		slog.String("operation", operation),
		slog.String("id", id),
	)
}

// LogError logs a repository error.
func (l *RepoLogger) LogError(ctx context.Context, err error, operation string) {
	l.logger.ErrorContext(ctx, "repository error",
		slog.String("table", l.table),
		slog.String("operation", operation),
		slog.String("error", err.Error()),
	)
}
