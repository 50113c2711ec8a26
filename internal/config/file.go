package config

import (
	"fmt"
	"os"
	"sort"

	"github.com/BurntSushi/toml"

	"github.com/alfredjeanlab/blueprint/internal/model"
)

// ProjectFile is the per-project TOML file, blueprint.toml by default:
//
//	project_id = "proj-42"
//	category   = "feature"
//
//	[status_mapping]
//	validated = "in_progress"
type ProjectFile struct {
	ProjectID     string            `toml:"project_id"`
	Category      string            `toml:"category"`
	StatusMapping map[string]string `toml:"status_mapping"`
}

// LoadProjectFile decodes the project file at path. A missing file yields
// an empty ProjectFile.
func LoadProjectFile(path string) (*ProjectFile, error) {
	var pf ProjectFile
	if _, err := toml.DecodeFile(path, &pf); err != nil {
		if os.IsNotExist(err) {
			return &ProjectFile{}, nil
		}
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return &pf, nil
}

// Statuses converts the status_mapping table to typed statuses. Unknown
// source or board statuses are an error.
func (pf *ProjectFile) Statuses() (map[model.SourceStatus]model.BoardStatus, error) {
	if len(pf.StatusMapping) == 0 {
		return nil, nil
	}
	keys := make([]string, 0, len(pf.StatusMapping))
	for k := range pf.StatusMapping {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(map[model.SourceStatus]model.BoardStatus, len(keys))
	for _, k := range keys {
		src := model.SourceStatus(k)
		dst := model.BoardStatus(pf.StatusMapping[k])
		if !src.IsValid() {
			return nil, fmt.Errorf("status_mapping: unknown source status %q", k)
		}
		if !dst.IsValid() {
			return nil, fmt.Errorf("status_mapping.%s: unknown board status %q", k, dst)
		}
		out[src] = dst
	}
	return out, nil
}

// Save writes the project file to path.
func (pf *ProjectFile) Save(path string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(pf)
}
