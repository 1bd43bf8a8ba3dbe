// Package protocol defines the messages exchanged on the /ws/jobs connection.
//
// The client asks for exactly one job at a time:
//
//	client → {"type":"NEXT_JOB"}
//	server → {"type":"JOB","job":{...}}  or  {"type":"END"}
//
// The server may also push {"type":"CATALOG_UPDATED"} after an import.
// Clients that do not care ignore it.
package protocol

import "swipehire/internal/domain/job"

const (
	TypeNextJob = "NEXT_JOB"
	TypeJob     = "JOB"
	TypeEnd     = "END"

	TypeCatalogUpdated = "CATALOG_UPDATED"
)

// PathJobs is where the feed connection is served.
const PathJobs = "/ws/jobs"

type Message struct {
	Type string   `json:"type"`
	Job  *job.Job `json:"job,omitempty"`

	// Set on CATALOG_UPDATED only.
	Source string `json:"source,omitempty"`
	Count  int    `json:"count,omitempty"`
}

func NextJob() Message { return Message{Type: TypeNextJob} }

func JobMessage(j job.Job) Message { return Message{Type: TypeJob, Job: &j} }

func End() Message { return Message{Type: TypeEnd} }

func CatalogUpdated(source string, count int) Message {
	return Message{Type: TypeCatalogUpdated, Source: source, Count: count}
}
