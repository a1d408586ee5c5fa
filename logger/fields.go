package logger

// Standard field names for consistent structured logging.
// Use these constants instead of raw strings to ensure consistency.
const (
	FieldComponent = "component"
	FieldPackage   = "package"
	FieldType      = "type"
	FieldHelper    = "helper"
	FieldFile      = "file"
	FieldCount     = "count"
	FieldPath      = "path"
	FieldReason    = "reason"
	FieldError     = "error"

	FieldDurationMS = "duration_ms"
)
