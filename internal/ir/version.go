package ir

// Version constants for persisted data and the engine.
const (
	// SchemaVersion is the chart/result document schema version.
	SchemaVersion = "1"

	// EngineVersion is the beatline engine version.
	EngineVersion = "0.1.0"
)
