package logging

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldEventType classifies a log line for filtering (e.g. part_complete).
	FieldEventType = "event_type"
	// FieldErrorHint carries the next step an operator should take.
	FieldErrorHint = "error_hint"
	// FieldImpact is the standardized key for user-facing consequence of a warning.
	FieldImpact = "impact"
	// FieldRunID identifies one build or merge invocation.
	FieldRunID = "run_id"
	// FieldPartIndex is the 1-based index of the part being built.
	FieldPartIndex = "part_index"
	// FieldBatchIndex is the 1-based flush index within a part.
	FieldBatchIndex = "batch_index"
	// FieldPath is the file the log line is about.
	FieldPath = "path"
	// FieldAlert flags warnings or anomalies that should stand out in structured logs.
	FieldAlert = "alert"
)
