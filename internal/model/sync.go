package model

import "time"

// SyncStats are the counters of one synchronization run. They are returned to
// the caller and never persisted.
type SyncStats struct {
	RunID           string    `json:"runId"`
	TotalFetched    int       `json:"totalFetched"`
	TotalValid      int       `json:"totalValid"`
	TotalSkipped    int       `json:"totalSkipped"`
	FetchFailures   int       `json:"fetchFailures"`
	PersistFailures int       `json:"persistFailures"`
	FailedUUIDs     []string  `json:"failedUuids"`
	Windows         int       `json:"windows"`
	Pages           int       `json:"pages"`
	StartedAt       time.Time `json:"startedAt"`
	FinishedAt      time.Time `json:"finishedAt"`
}
