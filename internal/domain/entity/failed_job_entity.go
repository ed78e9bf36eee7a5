package entity

import (
	"encoding/json"
	"time"
)

// FailedJob is an append-only record of an asynchronous job that could not
// be processed. Rows are written by workers and only ever read from here.
type FailedJob struct {
	ID       int64
	Queue    string
	Payload  json.RawMessage
	Error    string
	FailedAt time.Time
}
