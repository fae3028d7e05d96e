package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// Values is an in-memory Source backed by cty values. Values of any
// convertible type are accepted, so the string "42" satisfies GetInt.
type Values map[string]cty.Value

var _ Source = Values(nil)

// Set stores a native Go value under key.
func (v Values) Set(key string, val any) error {
	ty, err := gocty.ImpliedType(val)
	if err != nil {
		return errors.Wrapf(err, "setting %q: unable to infer cty type", key)
	}
	cv, err := gocty.ToCtyValue(val, ty)
	if err != nil {
		return errors.Wrapf(err, "setting %q", key)
	}
	v[key] = cv
	return nil
}

// GetInt implements Source.
func (v Values) GetInt(key string, def int) int {
	var out int
	if err := v.decode(key, cty.Number, &out); err != nil {
		return def
	}
	return out
}

// GetInt64 implements Source.
func (v Values) GetInt64(key string, def int64) int64 {
	var out int64
	if err := v.decode(key, cty.Number, &out); err != nil {
		return def
	}
	return out
}

// GetBool implements Source.
func (v Values) GetBool(key string, def bool) bool {
	var out bool
	if err := v.decode(key, cty.Bool, &out); err != nil {
		return def
	}
	return out
}

var errAbsent = errors.New("absent")

func (v Values) decode(key string, ty cty.Type, target any) error {
	val, ok := v[key]
	if !ok || val.IsNull() || !val.IsKnown() {
		return errAbsent
	}
	converted, err := convert.Convert(val, ty)
	if err != nil {
		return err
	}
	return gocty.FromCtyValue(converted, target)
}

// Validate checks that every recognised session key present in v holds a
// value of the right type. Getters silently fall back to their default, so
// loaders call this to surface typos early.
func (v Values) Validate() error {
	var errs []string
	for _, key := range sortedKeys(v) {
		var err error
		switch key {
		case FetchSizeKey, RetryAttemptsKey, RetrySleepMsKey, ConnectionTimeoutMsKey, RPCTimeoutMsKey:
			var out int
			err = v.decode(key, cty.Number, &out)
		case MemLimitKey, RecordsLimitKey:
			var out int64
			err = v.decode(key, cty.Number, &out)
		case EnableServerLoggingKey:
			var out bool
			err = v.decode(key, cty.Bool, &out)
		default:
			continue
		}
		if err != nil && !errors.Is(err, errAbsent) {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
		}
	}
	if len(errs) > 0 {
		return errors.Newf("invalid settings:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

func sortedKeys(v Values) []string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
