package mockdraft

import "time"

// Pick outcome statuses.
const (
	StatusAccepted = "accepted"
	StatusRejected = "rejected"
	StatusFailed   = "failed"
)

// Defaults applied when a Config field is left zero.
const (
	DefaultPool    = 25
	DefaultTimeout = 10 * time.Second
	DefaultSettle  = 5 * time.Second

	settlePoll           = 25 * time.Millisecond
	percentageMultiplier = 100
	filePermission       = 0600
	directoryPermission  = 0755
)
