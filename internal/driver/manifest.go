package driver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"vigil/internal/library"
	"vigil/internal/types"
	"vigil/internal/valueflow"
)

// ManifestName is the project manifest file the directory mode looks for.
const ManifestName = "vigil.toml"

// ErrNoManifest reports that the directory carries no vigil.toml.
var ErrNoManifest = errors.New("no manifest")

// Manifest is the parsed vigil.toml. Absent sections keep the engine
// defaults; the CLI applies its flags on top.
type Manifest struct {
	Platform struct {
		Name string `toml:"name"`
	} `toml:"platform"`
	Analysis struct {
		Cycles        int   `toml:"cycles"`
		PublishDepth  int   `toml:"publish_depth"`
		LifetimeDepth int   `toml:"lifetime_depth"`
		BranchDepth   int   `toml:"branch_depth"`
		WalkNodes     int   `toml:"walk_nodes"`
		MaxDiags      int   `toml:"max_diagnostics"`
		Cache         *bool `toml:"cache"` // nil = каталожный режим решает сам
	} `toml:"analysis"`
	Library struct {
		Files []string `toml:"files"`
	} `toml:"library"`
}

// LoadManifest parses dir/vigil.toml. A missing file yields ErrNoManifest so
// callers can fall back to pure defaults.
func LoadManifest(dir string) (*Manifest, error) {
	path := filepath.Join(dir, ManifestName)
	var m Manifest
	meta, err := toml.DecodeFile(path, &m)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoManifest
		}
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if meta.IsDefined("platform", "name") {
		if _, ok := types.PlatformByName(m.Platform.Name); !ok {
			return nil, fmt.Errorf("%s: unknown platform %q", path, m.Platform.Name)
		}
	}
	return &m, nil
}

// Apply merges the manifest into options: the manifest overrides defaults,
// already-set option fields win (they carry the CLI flags).
func (m *Manifest) Apply(opts Options) (Options, error) {
	if m == nil {
		return opts, nil
	}
	if opts.Platform.Name == "" && m.Platform.Name != "" {
		p, ok := types.PlatformByName(m.Platform.Name)
		if !ok {
			return opts, fmt.Errorf("unknown platform %q", m.Platform.Name)
		}
		opts.Platform = p
	}
	if opts.Budgets == (valueflow.Budgets{}) {
		b := valueflow.DefaultBudgets()
		if m.Analysis.Cycles > 0 {
			b.Cycles = m.Analysis.Cycles
		}
		if m.Analysis.PublishDepth > 0 {
			b.PublishDepth = m.Analysis.PublishDepth
		}
		if m.Analysis.LifetimeDepth > 0 {
			b.LifetimeDepth = m.Analysis.LifetimeDepth
		}
		if m.Analysis.BranchDepth > 0 {
			b.BranchDepth = m.Analysis.BranchDepth
		}
		if m.Analysis.WalkNodes > 0 {
			b.WalkNodes = m.Analysis.WalkNodes
		}
		opts.Budgets = b
	}
	if opts.MaxDiagnostics == 0 && m.Analysis.MaxDiags > 0 {
		opts.MaxDiagnostics = m.Analysis.MaxDiags
	}
	if opts.Library == nil && len(m.Library.Files) > 0 {
		lib, err := library.Load(m.Library.Files...)
		if err != nil {
			return opts, fmt.Errorf("library: %w", err)
		}
		opts.Library = lib
	}
	return opts, nil
}
