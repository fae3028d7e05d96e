package sioworker

import (
	"encoding/json"

	"github.com/cockroachdb/errors"
	"github.com/kakamessi99/RecordServiceClient/internal/worker"
)

type execReply struct {
	Handle string            `json:"handle"`
	Schema *worker.RawSchema `json:"schema"`
	Error  string            `json:"error"`
}

type fetchReply struct {
	Records []worker.Record `json:"records"`
	Done    bool            `json:"done"`
	Error   string          `json:"error"`
}

// firstArg re-encodes the first ack argument into out. Ack payloads arrive as
// generic JSON values (maps, slices, float64).
func firstArg(args []any, out any) error {
	if len(args) == 0 {
		return errors.New("empty acknowledgement")
	}
	raw, err := json.Marshal(args[0])
	if err != nil {
		return errors.Wrap(err, "re-encoding acknowledgement")
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return errors.Wrap(err, "decoding acknowledgement")
	}
	return nil
}

func decodeExecReply(args []any) (string, worker.RawSchema, error) {
	var reply execReply
	if err := firstArg(args, &reply); err != nil {
		return "", worker.RawSchema{}, err
	}
	if reply.Error != "" {
		return "", worker.RawSchema{}, errors.Newf("worker rejected task: %s", reply.Error)
	}
	if reply.Handle == "" {
		return "", worker.RawSchema{}, errors.New("worker reply has no task handle")
	}
	if reply.Schema == nil {
		return "", worker.RawSchema{}, errors.New("worker reply has no schema")
	}
	return reply.Handle, *reply.Schema, nil
}

func decodeFetchReply(args []any) ([]worker.Record, bool, error) {
	var reply fetchReply
	if err := firstArg(args, &reply); err != nil {
		return nil, false, err
	}
	if reply.Error != "" {
		return nil, false, errors.Newf("worker failed fetch: %s", reply.Error)
	}
	if !reply.Done && len(reply.Records) == 0 {
		return nil, false, errors.New("worker returned an empty batch without finishing")
	}
	return reply.Records, reply.Done, nil
}
