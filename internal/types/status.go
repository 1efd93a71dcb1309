package types

// Status tracks the lifecycle of a persisted row. Deleted rows stay in the table
// and are filtered out of every read.
type Status string

const (
	StatusPublished Status = "published"
	StatusDeleted   Status = "deleted"
)
