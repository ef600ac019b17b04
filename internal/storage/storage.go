package storage

import (
	"context"
)

// TranscriptArchive stores the prompt/response pair of every generation call
// as a JSON object, for audit and prompt debugging. Archiving is best effort:
// callers log failures and carry on.
type TranscriptArchive interface {
	// PutTranscript writes one transcript under the given object key.
	PutTranscript(ctx context.Context, objectKey string, payload []byte) error
}

// Transcript is the archived record of one generation call.
type Transcript struct {
	RunID    string `json:"run_id"`
	Stage    string `json:"stage"`
	Schema   string `json:"schema"`
	Prompt   string `json:"prompt"`
	Response string `json:"response,omitempty"`
	Error    string `json:"error,omitempty"`
}

// NopArchive discards transcripts. Used when no bucket is configured.
type NopArchive struct{}

func (NopArchive) PutTranscript(ctx context.Context, objectKey string, payload []byte) error {
	return nil
}
