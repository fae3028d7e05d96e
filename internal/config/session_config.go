package config

// Unset marks a tunable that must not be forwarded to the worker client.
const Unset = -1

// DefaultFetchSize is used when no fetch size is configured. It is well above
// the worker client's built-in default: readers favour throughput over memory.
const DefaultFetchSize = 50000

// Recognised configuration keys.
const (
	FetchSizeKey           = "recordservice.task.fetch.size"
	MemLimitKey            = "recordservice.task.memlimit.bytes"
	RecordsLimitKey        = "recordservice.task.records.limit"
	RetryAttemptsKey       = "recordservice.worker.retry.attempts"
	RetrySleepMsKey        = "recordservice.worker.retry.sleepMs"
	ConnectionTimeoutMsKey = "recordservice.worker.connection.timeoutMs"
	RPCTimeoutMsKey        = "recordservice.worker.rpc.timeoutMs"
	EnableServerLoggingKey = "recordservice.worker.server.enableLogging"
)

// SessionConfig holds the tunables of one reader session. Numeric fields
// equal to Unset are left to the worker client.
type SessionConfig struct {
	FetchSize           int
	MemLimitBytes       int64
	RecordsLimit        int64
	MaxAttempts         int
	RetrySleepMs        int
	ConnectionTimeoutMs int
	RPCTimeoutMs        int
	ServerLogging       bool
}

// FromSource extracts a SessionConfig. A nil source yields the defaults.
func FromSource(src Source) SessionConfig {
	if src == nil {
		src = Values{}
	}
	return SessionConfig{
		FetchSize:           src.GetInt(FetchSizeKey, DefaultFetchSize),
		MemLimitBytes:       src.GetInt64(MemLimitKey, Unset),
		RecordsLimit:        src.GetInt64(RecordsLimitKey, Unset),
		MaxAttempts:         src.GetInt(RetryAttemptsKey, Unset),
		RetrySleepMs:        src.GetInt(RetrySleepMsKey, Unset),
		ConnectionTimeoutMs: src.GetInt(ConnectionTimeoutMsKey, Unset),
		RPCTimeoutMs:        src.GetInt(RPCTimeoutMsKey, Unset),
		ServerLogging:       src.GetBool(EnableServerLoggingKey, false),
	}
}
