package core

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
)

func (b *Bridge) observeOperation(
	ctx context.Context,
	startedAt time.Time,
	operation string,
	err error,
	fields map[string]any,
) {
	if b == nil {
		return
	}
	operation = normalizeOperation(operation)
	if operation == "" {
		operation = "unknown"
	}
	status := "success"
	if err != nil {
		status = "failure"
	}

	contextFields := cloneFields(fields)
	contextFields["event_type"] = operation
	contextFields["status"] = status
	contextFields["duration_ms"] = time.Since(startedAt).Milliseconds()
	if err != nil {
		contextFields["error"] = err.Error()
		b.enrichErrorFields(contextFields, err)
	}

	tags := map[string]string{
		"operation": operation,
		"status":    status,
	}
	for _, key := range []string{"outcome", "data_center"} {
		if value := strings.TrimSpace(fmt.Sprint(contextFields[key])); value != "" && value != "<nil>" {
			tags[key] = value
		}
	}

	b.recordCounter(ctx, "idcapture."+operation+".total", 1, tags)
	b.recordHistogram(ctx, "idcapture."+operation+".duration_ms", float64(time.Since(startedAt).Milliseconds()), tags)

	contextFields = RedactSensitiveMap(contextFields)
	if err != nil {
		b.logError(ctx, operation+" failed", contextFields)
		return
	}
	b.logInfo(ctx, operation+" succeeded", contextFields)
}

func (b *Bridge) enrichErrorFields(fields map[string]any, err error) {
	if b.errorMapper == nil {
		return
	}
	mapped := b.errorMapper(err)
	if mapped == nil {
		return
	}
	fields["text_code"] = mapped.TextCode
	fields["error_category"] = mapped.Category.String()
	fields["error_severity"] = mapped.GetSeverity().String()
	if mapped.RequestID != "" {
		fields["request_id"] = mapped.RequestID
	}
	if len(mapped.Metadata) > 0 {
		fields["error_metadata"] = RedactSensitiveMap(mapped.Metadata)
	}
}

func (b *Bridge) logInfo(ctx context.Context, message string, fields map[string]any) {
	b.logWithLevel(ctx, "info", message, fields)
}

func (b *Bridge) logWarn(ctx context.Context, message string, fields map[string]any) {
	b.logWithLevel(ctx, "warn", message, fields)
}

func (b *Bridge) logDebug(ctx context.Context, message string, fields map[string]any) {
	b.logWithLevel(ctx, "debug", message, fields)
}

func (b *Bridge) logError(ctx context.Context, message string, fields map[string]any) {
	b.logWithLevel(ctx, "error", message, fields)
}

func (b *Bridge) logWithLevel(ctx context.Context, level string, message string, fields map[string]any) {
	if b == nil {
		return
	}
	logWithLevel(ctx, b.logger, level, message, fields)
}

func logWithLevel(ctx context.Context, logger Logger, level string, message string, fields map[string]any) {
	if logger == nil {
		return
	}
	if ctx != nil {
		logger = logger.WithContext(ctx)
	}
	if fieldsLogger, ok := logger.(FieldsLogger); ok {
		logger = fieldsLogger.WithFields(cloneFields(fields))
	}
	args := flattenFields(fields)
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "error":
		logger.Error(message, args...)
	case "warn":
		logger.Warn(message, args...)
	case "debug":
		logger.Debug(message, args...)
	default:
		logger.Info(message, args...)
	}
}

func (b *Bridge) recordCounter(ctx context.Context, name string, value int64, tags map[string]string) {
	if b == nil || b.metricsRecorder == nil {
		return
	}
	b.metricsRecorder.IncCounter(ctx, strings.TrimSpace(name), value, cloneTags(tags))
}

func (b *Bridge) recordHistogram(ctx context.Context, name string, value float64, tags map[string]string) {
	if b == nil || b.metricsRecorder == nil {
		return
	}
	b.metricsRecorder.ObserveHistogram(ctx, strings.TrimSpace(name), value, cloneTags(tags))
}

func cloneFields(fields map[string]any) map[string]any {
	copied := make(map[string]any, len(fields))
	for key, value := range fields {
		copied[key] = value
	}
	return copied
}

func flattenFields(fields map[string]any) []any {
	if len(fields) == 0 {
		return nil
	}
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	args := make([]any, 0, len(keys)*2)
	for _, key := range keys {
		args = append(args, key, fields[key])
	}
	return args
}

func normalizeOperation(operation string) string {
	operation = strings.TrimSpace(strings.ToLower(operation))
	operation = strings.ReplaceAll(operation, " ", "_")
	operation = strings.ReplaceAll(operation, "-", "_")
	return operation
}
