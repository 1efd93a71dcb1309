package types

type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// SnapshotStoreKind selects where recognition queue snapshots and history live
type SnapshotStoreKind string

const (
	SnapshotStoreMemory SnapshotStoreKind = "memory"
	SnapshotStoreFile   SnapshotStoreKind = "file"
	SnapshotStoreS3     SnapshotStoreKind = "s3"
)

// RecognizerKind selects the recognizer adapter
type RecognizerKind string

const (
	RecognizerOpenAI RecognizerKind = "openai"
	// RecognizerDisabled fails every call; useful for running the billing API alone
	RecognizerDisabled RecognizerKind = "disabled"
)
