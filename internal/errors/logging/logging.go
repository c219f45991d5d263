package logging

import (
	"context"
	"sort"
	"time"

	apperrors "romgen/internal/errors"
	"romgen/internal/logger"
)

var reservedMetadataKeys = map[string]struct{}{
	"error_code":     {},
	"error_category": {},
	"error_message":  {},
	"operation":      {},
	"module":         {},
	"error_time":     {},
	"error":          {},
}

// Error logs msg with structured fields derived from err. Errors that are not
// AppErrors are logged with a single error field.
func Error(ctx context.Context, log logger.Logger, msg string, err error) {
	if log == nil {
		return
	}
	if err == nil {
		log.ErrorContext(ctx, msg)
		return
	}
	appErr, ok := apperrors.As(err)
	if !ok {
		log.ErrorContext(ctx, msg, logger.Error(err))
		return
	}

	log.ErrorContext(ctx, msg, Fields(appErr)...)
}

// Fields converts an AppError into logger fields. Metadata keys are emitted in
// sorted order so that log lines are stable.
func Fields(appErr *apperrors.AppError) []logger.Field {
	if appErr == nil {
		return nil
	}

	fields := make([]logger.Field, 0, len(appErr.Metadata)+7)

	if appErr.Code != "" {
		fields = append(fields, logger.String("error_code", appErr.Code))
	}
	if appErr.Category != "" {
		fields = append(fields, logger.String("error_category", string(appErr.Category)))
	}
	if appErr.Message != "" {
		fields = append(fields, logger.String("error_message", appErr.Message))
	}
	if appErr.Operation != "" {
		fields = append(fields, logger.String("operation", appErr.Operation))
	}
	if appErr.Module != "" {
		fields = append(fields, logger.String("module", appErr.Module))
	}
	if appErr.Err != nil {
		fields = append(fields, logger.Error(appErr.Err))
	}

	fields = append(fields, logger.String("error_time", appErr.TimestampOrNow().Format(time.RFC3339Nano)))

	keys := make([]string, 0, len(appErr.Metadata))
	for k := range appErr.Metadata {
		if _, reserved := reservedMetadataKeys[k]; reserved {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fields = append(fields, logger.Any(k, appErr.Metadata[k]))
	}

	return fields
}
