package hcl

import (
	"context"
	"encoding/base64"

	"github.com/cockroachdb/errors"
	"github.com/kakamessi99/RecordServiceClient/internal/config"
	"github.com/kakamessi99/RecordServiceClient/internal/credentials"
	"github.com/kakamessi99/RecordServiceClient/internal/ctxlog"
	"github.com/kakamessi99/RecordServiceClient/internal/netaddr"
	"github.com/kakamessi99/RecordServiceClient/internal/task"
	"github.com/zclconf/go-cty/cty"
)

// extraAttr holds raw key/value pairs copied verbatim into the settings.
const extraAttr = "extra"

// settingsAttrs maps settings attribute names to configuration keys.
var settingsAttrs = map[string]string{
	"fetch_size":            config.FetchSizeKey,
	"mem_limit_bytes":       config.MemLimitKey,
	"records_limit":         config.RecordsLimitKey,
	"retry_attempts":        config.RetryAttemptsKey,
	"retry_sleep_ms":        config.RetrySleepMsKey,
	"connection_timeout_ms": config.ConnectionTimeoutMsKey,
	"rpc_timeout_ms":        config.RPCTimeoutMsKey,
	"enable_server_logging": config.EnableServerLoggingKey,
}

// translateSettings merges a settings block into dst. Named attributes are
// applied after extra, so they win when both set the same key.
func (l *Loader) translateSettings(ctx context.Context, s *settingsBlock, dst config.Values) error {
	logger := ctxlog.FromContext(ctx)

	attrs, diags := s.Body.JustAttributes()
	if diags.HasErrors() {
		return diags
	}

	if extra, ok := attrs[extraAttr]; ok {
		val, diags := extra.Expr.Value(nil)
		if diags.HasErrors() {
			return diags
		}
		if !val.IsNull() {
			if !val.Type().IsObjectType() && !val.Type().IsMapType() {
				return errors.Newf("%s: %q must be a map, got %s", extra.Range, extraAttr, val.Type().FriendlyName())
			}
			for it := val.ElementIterator(); it.Next(); {
				k, v := it.Element()
				setValue(dst, k.AsString(), v)
			}
		}
	}

	for name, attr := range attrs {
		if name == extraAttr {
			continue
		}
		key, known := settingsAttrs[name]
		if !known {
			return errors.Newf("%s: unsupported setting %q", attr.NameRange, name)
		}
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return diags
		}
		setValue(dst, key, val)
		logger.Debug("Applied setting.", "key", key, "type", val.Type().FriendlyName())
	}
	return nil
}

// setValue stores val, treating null as "remove".
func setValue(dst config.Values, key string, val cty.Value) {
	if val.IsNull() {
		delete(dst, key)
		return
	}
	dst[key] = val
}

// translateCredential converts a credential block into a token.
func (l *Loader) translateCredential(c *credentialBlock) (*credentials.Token, error) {
	id, err := base64.StdEncoding.DecodeString(c.Identifier)
	if err != nil {
		return nil, errors.Wrapf(err, "credential %q: decoding identifier", c.Kind)
	}
	pw, err := base64.StdEncoding.DecodeString(c.Password)
	if err != nil {
		return nil, errors.Wrapf(err, "credential %q: decoding password", c.Kind)
	}
	return &credentials.Token{
		Kind:       c.Kind,
		Service:    c.Service,
		Identifier: id,
		Password:   pw,
	}, nil
}

// translateTask converts a task block into a validated descriptor.
func (l *Loader) translateTask(t *taskBlock) (*task.Descriptor, error) {
	payload, err := base64.StdEncoding.DecodeString(t.Payload)
	if err != nil {
		return nil, errors.Wrapf(err, "task %q: decoding payload", t.ID)
	}
	locations, err := translateEndpoints(t.Locations, t.LocationAddrs)
	if err != nil {
		return nil, errors.Wrapf(err, "task %q: location", t.ID)
	}
	workers, err := translateEndpoints(t.Workers, t.WorkerAddrs)
	if err != nil {
		return nil, errors.Wrapf(err, "task %q: worker", t.ID)
	}

	d := task.New(t.ID, payload, locations, workers)
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

func translateEndpoints(blocks []*endpointBlock, addrs []string) ([]netaddr.Address, error) {
	if len(blocks)+len(addrs) == 0 {
		return nil, nil
	}
	out := make([]netaddr.Address, 0, len(blocks)+len(addrs))
	for _, b := range blocks {
		addr, err := netaddr.New(b.Host, b.Port)
		if err != nil {
			return nil, err
		}
		out = append(out, addr)
	}
	for _, s := range addrs {
		addr, err := netaddr.Parse(s)
		if err != nil {
			return nil, err
		}
		out = append(out, addr)
	}
	return out, nil
}
