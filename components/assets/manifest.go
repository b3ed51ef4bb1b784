package assets

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"slices"
)

// ManifestPath is where vite writes its manifest, relative to the static root.
const ManifestPath = "dist/.vite/manifest.json"

type ManifestEntry struct {
	File    string   `json:"file"`
	Src     string   `json:"src,omitempty"`
	Name    string   `json:"name,omitempty"`
	IsEntry bool     `json:"isEntry,omitempty"`
	CSS     []string `json:"css,omitempty"`
	Imports []string `json:"imports,omitempty"`
	Assets  []string `json:"assets,omitempty"`
}

// Manifest maps a source asset path to its built output.
type Manifest map[string]ManifestEntry

// Warm loads the manifest if it is not cached yet and reports the load
// error, if any.
func (r *Resolver) Warm() error {
	return r.load().err
}

// Entries lists the manifest keys in order.
func (r *Resolver) Entries() []string {
	m := r.load().manifest
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func (r *Resolver) Entry(name string) (ManifestEntry, bool) {
	e, ok := r.load().manifest[normalize(name)]
	return e, ok
}

func (r *Resolver) load() *manifestState {
	if st := r.state.Load(); st != nil {
		return st
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if st := r.state.Load(); st != nil {
		return st
	}

	r.loads.Inc()
	m, err := readManifest(r.fs)
	if err != nil {
		r.loadFailures.Inc()
		r.logger.Error("manifest not found or invalid", "path", ManifestPath, "err", err)
		st := &manifestState{manifest: Manifest{}, err: err}
		if !r.cfg.RetryFailedLoad {
			r.state.Store(st)
		}
		return st
	}

	st := &manifestState{manifest: m}
	r.state.Store(st)
	r.logger.Debug("manifest loaded", "path", ManifestPath, "entries", len(m))
	return st
}

func readManifest(fsys fs.FS) (Manifest, error) {
	if fsys == nil {
		return nil, fmt.Errorf("open %s: no static filesystem", ManifestPath)
	}
	data, err := fs.ReadFile(fsys, ManifestPath)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if m == nil {
		m = Manifest{}
	}
	return m, nil
}
