package app

import (
	"encoding/json"

	"github.com/cockroachdb/errors"
	"github.com/kakamessi99/RecordServiceClient/internal/worker"
)

type recordLine struct {
	Task   string        `json:"task"`
	Record worker.Record `json:"record"`
}

type countLine struct {
	Task  string `json:"task"`
	Count int64  `json:"count"`
}

func (a *App) writeRecord(taskID string, rec worker.Record) error {
	return a.writeLine(recordLine{Task: taskID, Record: rec})
}

func (a *App) writeCount(taskID string, n int64) error {
	return a.writeLine(countLine{Task: taskID, Count: n})
}

// writeLine writes v as one JSON line. Lines from concurrent tasks never
// interleave.
func (a *App) writeLine(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "encoding output line")
	}
	b = append(b, '\n')

	a.outMu.Lock()
	defer a.outMu.Unlock()
	if _, err := a.outW.Write(b); err != nil {
		return errors.Wrap(err, "writing output")
	}
	return nil
}
