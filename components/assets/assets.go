package assets

import (
	"io/fs"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/puzpuzpuz/xsync/v4"
)

const (
	DefaultDevServerURL = "http://localhost:5173"
	DefaultStaticURL    = "/static/"

	urlCacheSize = 512
)

// Config selects how asset names become URLs. It is fixed for the lifetime
// of a Resolver.
type Config struct {
	Debug        bool
	UseDevServer bool
	DevServerURL string
	StaticURL    string

	// RetryFailedLoad leaves the manifest cache cold after a failed load so
	// the next call reads the file again. When false an empty manifest is
	// cached for the rest of the process.
	RetryFailedLoad bool
}

type Stats struct {
	Loads        int64
	LoadFailures int64
	Hits         int64
	Fallbacks    int64
}

type manifestState struct {
	manifest Manifest
	err      error
}

// Resolver maps logical asset names to servable URLs, either on the vite
// dev server or through the production manifest under the static mount.
type Resolver struct {
	fs     fs.FS
	cfg    Config
	logger *slog.Logger

	mu    sync.Mutex
	state atomic.Pointer[manifestState]

	urls *lru.Cache[string, string]
	// gen changes on Reset so URLs computed from a dropped manifest are
	// not memoized.
	gen uint64

	loads        *xsync.Counter
	loadFailures *xsync.Counter
	hits         *xsync.Counter
	fallbacks    *xsync.Counter
}

// NewResolver returns a resolver reading the manifest from fsys, which
// must be rooted at the static root.
func NewResolver(fsys fs.FS, cfg Config, logger *slog.Logger) *Resolver {
	if cfg.DevServerURL == "" {
		cfg.DevServerURL = DefaultDevServerURL
	}
	cfg.DevServerURL = strings.TrimSuffix(cfg.DevServerURL, "/")
	if cfg.StaticURL == "" {
		cfg.StaticURL = DefaultStaticURL
	}
	if !strings.HasSuffix(cfg.StaticURL, "/") {
		cfg.StaticURL += "/"
	}
	if logger == nil {
		logger = slog.Default()
	}

	urls, _ := lru.New[string, string](urlCacheSize)

	return &Resolver{
		fs:           fsys,
		cfg:          cfg,
		logger:       logger,
		urls:         urls,
		loads:        xsync.NewCounter(),
		loadFailures: xsync.NewCounter(),
		hits:         xsync.NewCounter(),
		fallbacks:    xsync.NewCounter(),
	}
}

func (r *Resolver) IsDev() bool {
	return r.cfg.Debug && r.cfg.UseDevServer
}

func (r *Resolver) DevServerURL() string {
	return r.cfg.DevServerURL
}

func (r *Resolver) StaticURL() string {
	return r.cfg.StaticURL
}

// ViteClientURL is the HMR client script, empty outside dev mode.
func (r *Resolver) ViteClientURL() string {
	if !r.IsDev() {
		return ""
	}
	return r.cfg.DevServerURL + r.staticURL("@vite/client")
}

// Static returns the URL a page should load filename from. It never fails;
// the worst case is an unhashed path under the static mount.
func (r *Resolver) Static(filename string) string {
	if r.IsDev() {
		return r.cfg.DevServerURL + r.staticURL(normalize(filename))
	}

	if u, ok := r.urls.Get(filename); ok {
		return u
	}

	gen := r.generation()
	u, final := r.resolveManifest(filename)
	if final {
		r.memoize(filename, u, gen)
	}
	return u
}

func (r *Resolver) generation() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.gen
}

// memoize stores u unless the resolver was reset after gen was read.
func (r *Resolver) memoize(filename, u string, gen uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.gen == gen {
		r.urls.Add(filename, u)
	}
}

func (r *Resolver) resolveManifest(filename string) (string, bool) {
	st := r.load()
	final := st.err == nil || !r.cfg.RetryFailedLoad

	key := normalize(filename)
	if len(st.manifest) == 0 {
		r.fallbacks.Inc()
		return r.staticURL(key), final
	}

	entry, ok := st.manifest[key]
	if !ok || entry.File == "" {
		r.fallbacks.Inc()
		return r.staticURL(filename), final
	}

	r.hits.Inc()
	return r.staticURL(entry.File), final
}

// CSS returns the stylesheet URLs an entry needs. Outside the manifest it
// degrades to the single Static URL of name.
func (r *Resolver) CSS(name string) []string {
	if r.IsDev() {
		return []string{r.Static(name)}
	}

	entry, ok := r.load().manifest[normalize(name)]
	if !ok {
		return []string{r.Static(name)}
	}
	if len(entry.CSS) > 0 {
		paths := make([]string, len(entry.CSS))
		for i, c := range entry.CSS {
			paths[i] = r.staticURL(c)
		}
		return paths
	}
	if strings.HasSuffix(entry.File, ".css") {
		return []string{r.staticURL(entry.File)}
	}
	return nil
}

func (r *Resolver) Stats() Stats {
	return Stats{
		Loads:        r.loads.Value(),
		LoadFailures: r.loadFailures.Value(),
		Hits:         r.hits.Value(),
		Fallbacks:    r.fallbacks.Value(),
	}
}

// Reset drops the cached manifest and resolved URLs.
func (r *Resolver) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gen++
	r.state.Store(nil)
	r.urls.Purge()
}

// staticURL joins name onto the static mount. A leading slash on name is
// still served under the mount.
func (r *Resolver) staticURL(name string) string {
	segments := strings.Split(strings.TrimLeft(name, "/"), "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return r.cfg.StaticURL + strings.Join(segments, "/")
}

func normalize(filename string) string {
	return strings.TrimPrefix(filename, "/")
}
