// Package seed loads an initial list of values into the registry at startup.
//
// A seed file is TOML or YAML with a single "values" list:
//
//	values = ["racecar", "hello world"]
//
//	values:
//	  - racecar
//	  - hello world
package seed

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	regerrors "strreg/internal/errors"
	"strreg/internal/registry"
)

// File is the decoded form of a seed file.
type File struct {
	Values []string `toml:"values" yaml:"values"`
}

// Load reads a seed file, choosing the decoder from its extension.
func Load(path string) (*File, error) {
	var f File

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		meta, err := toml.DecodeFile(path, &f)
		if err != nil {
			return nil, fmt.Errorf("parse seed file: %w", err)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("parse seed file: unknown keys %v", undecoded)
		}
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read seed file: %w", err)
		}
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil {
			return nil, fmt.Errorf("parse seed file: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported seed file extension %q (want .toml, .yaml or .yml)", filepath.Ext(path))
	}

	return &f, nil
}

// Result summarises an Apply run.
type Result struct {
	Created int
	Skipped int
}

// Apply creates every value through svc. Values that already exist are
// skipped and logged; any other failure stops the run.
func Apply(ctx context.Context, svc *registry.Service, f *File, logger *slog.Logger) (Result, error) {
	var res Result
	for _, v := range f.Values {
		if _, err := svc.Create(ctx, v); err != nil {
			if regerrors.Is(err, regerrors.Conflict) {
				logger.Warn("Skipping duplicate seed value", "value", v)
				res.Skipped++
				continue
			}
			return res, err
		}
		res.Created++
	}

	logger.Info("Seed applied", "created", res.Created, "skipped", res.Skipped)
	return res, nil
}
