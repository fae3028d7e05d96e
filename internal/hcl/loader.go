package hcl

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/kakamessi99/RecordServiceClient/internal/config"
	"github.com/kakamessi99/RecordServiceClient/internal/ctxlog"
	"github.com/kakamessi99/RecordServiceClient/internal/fsutil"
)

// Extension is the suffix of files the loader reads.
const Extension = ".hcl"

// ErrNoConfigFiles is returned when none of the given paths hold an HCL file.
var ErrNoConfigFiles = errors.New("no configuration files found")

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

var _ config.Loader = (*Loader)(nil)

// NewLoader creates a new HCL configuration loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses every .hcl file reachable from paths and merges the blocks
// into a single model. Files are processed in order, so later settings
// override earlier ones.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	files, err := fsutil.CollectFiles(paths, Extension)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, errors.Wrapf(ErrNoConfigFiles, "searched %v", paths)
	}
	logger.Debug("Discovered HCL files.", "count", len(files))

	model := config.NewModel()
	taskIDs := make(map[string]string)
	parser := hclparse.NewParser()

	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, errors.Wrapf(diags, "failed to parse HCL file %s", file)
		}

		var root fileRoot
		if diags := gohcl.DecodeBody(hclFile.Body, nil, &root); diags.HasErrors() {
			return nil, errors.Wrapf(diags, "failed to decode HCL file %s", file)
		}

		for _, s := range root.Settings {
			if err := l.translateSettings(ctx, s, model.Settings); err != nil {
				return nil, errors.Wrapf(err, "settings in %s", file)
			}
		}
		for _, c := range root.Credentials {
			tok, err := l.translateCredential(c)
			if err != nil {
				return nil, errors.Wrapf(err, "in %s", file)
			}
			model.Credentials.Add(tok)
		}
		for _, t := range root.Tasks {
			if prev, dup := taskIDs[t.ID]; dup {
				return nil, errors.Newf("task %q in %s already defined in %s", t.ID, file, prev)
			}
			d, err := l.translateTask(t)
			if err != nil {
				return nil, errors.Wrapf(err, "in %s", file)
			}
			taskIDs[t.ID] = file
			model.Tasks = append(model.Tasks, d)
		}
	}

	if err := model.Settings.Validate(); err != nil {
		return nil, err
	}

	logger.Debug("HCL loading complete.",
		"files", len(files),
		"settings", len(model.Settings),
		"credentials", model.Credentials.Len(),
		"tasks", len(model.Tasks),
	)
	return model, nil
}
