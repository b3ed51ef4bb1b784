// Package templategen turns the project tree into a reusable starter
// template by swapping the project name for a placeholder.
package templategen

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"
)

const (
	DefaultOutput           = "template-output"
	DefaultProjectName      = "yads"
	DefaultPlaceholder      = "{{ project_name }}"
	DefaultTemplateFilesDir = "template-generator/template-files"
)

// ErrUnsafeOutput is returned when clearing the output would delete the source.
var ErrUnsafeOutput = errors.New("templategen: output would overwrite source")

// DefaultExclude lists substrings and *.ext patterns left out of the template.
var DefaultExclude = []string{
	".git",
	".github",
	".idea",
	"node_modules",
	"tmp",
	"*.test",
	"*.out",
	"static/dist",
	"media",
	".env",
	".env.local",
	"_examples",
	"template-generator",
	"template-output",
	"README.md",
}

// DefaultRenames maps source paths to their place in the template.
var DefaultRenames = map[string]string{
	"cmd/yads": "cmd/project_name",
}

var (
	textExtensions = []string{
		".go", ".mod", ".toml", ".json", ".js", ".md", ".yml", ".yaml",
		".html", ".css", ".templ", ".env",
	}
	textNames = []string{"justfile", "Dockerfile", "Makefile", "entrypoint", "start", ".env.example"}

	alwaysKept = []string{".gitkeep", ".gitignore"}
)

type Options struct {
	Source           string
	Output           string
	ProjectName      string
	Placeholder      string
	Exclude          []string
	Renames          map[string]string
	TemplateFilesDir string
	Concurrency      int
	Logger           *slog.Logger
}

func (o *Options) withDefaults() {
	if o.Source == "" {
		o.Source = "."
	}
	if o.Output == "" {
		o.Output = DefaultOutput
	}
	if o.ProjectName == "" {
		o.ProjectName = DefaultProjectName
	}
	if o.Placeholder == "" {
		o.Placeholder = DefaultPlaceholder
	}
	if o.Exclude == nil {
		o.Exclude = DefaultExclude
	}
	if o.Renames == nil {
		o.Renames = DefaultRenames
	}
	if o.TemplateFilesDir == "" {
		o.TemplateFilesDir = filepath.Join(o.Source, DefaultTemplateFilesDir)
	}
	if o.Concurrency <= 0 {
		o.Concurrency = runtime.GOMAXPROCS(0)
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
}

type copyJob struct {
	src     string
	dest    string
	replace bool
}

// Generate writes the template into opts.Output and returns the written
// paths, slash-separated and relative to the output directory, sorted.
func Generate(opts Options) ([]string, error) {
	opts.withDefaults()

	if err := checkOutput(opts.Source, opts.Output); err != nil {
		return nil, err
	}
	if err := os.RemoveAll(opts.Output); err != nil {
		return nil, fmt.Errorf("clean output: %w", err)
	}
	if err := os.MkdirAll(opts.Output, 0o755); err != nil {
		return nil, fmt.Errorf("create output: %w", err)
	}

	jobs, err := collect(opts)
	if err != nil {
		return nil, err
	}
	extra, err := templateFiles(opts)
	if err != nil {
		return nil, err
	}
	jobs = append(jobs, extra...)

	var (
		mu      sync.Mutex
		written = make([]string, 0, len(jobs))
	)
	g := new(errgroup.Group)
	g.SetLimit(opts.Concurrency)
	for _, job := range jobs {
		g.Go(func() error {
			dest := filepath.Join(opts.Output, filepath.FromSlash(job.dest))
			if err := copyFile(job.src, dest, job.replace, opts); err != nil {
				return fmt.Errorf("copy %s: %w", job.src, err)
			}
			mu.Lock()
			written = append(written, job.dest)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	slices.Sort(written)
	written = slices.Compact(written)
	opts.Logger.Info("template generated", "output", opts.Output, "files", len(written))
	return written, nil
}

// checkOutput refuses an output directory that is the source or one of
// its parents, since the output is removed before writing.
func checkOutput(source, output string) error {
	src, err := filepath.Abs(source)
	if err != nil {
		return fmt.Errorf("resolve source: %w", err)
	}
	out, err := filepath.Abs(output)
	if err != nil {
		return fmt.Errorf("resolve output: %w", err)
	}
	rel, err := filepath.Rel(out, src)
	if err != nil {
		return nil
	}
	if rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))) {
		return fmt.Errorf("%w: %s contains %s", ErrUnsafeOutput, output, source)
	}
	return nil
}

func collect(opts Options) ([]copyJob, error) {
	outAbs, _ := filepath.Abs(opts.Output)

	var jobs []copyJob
	err := filepath.WalkDir(opts.Source, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(opts.Source, p)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if abs, _ := filepath.Abs(p); abs == outAbs || Excluded(rel, opts.Exclude) {
				return filepath.SkipDir
			}
			return nil
		}
		if Excluded(rel, opts.Exclude) || !d.Type().IsRegular() {
			return nil
		}

		jobs = append(jobs, copyJob{
			src:     p,
			dest:    Rename(rel, opts.Renames),
			replace: true,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", opts.Source, err)
	}
	return jobs, nil
}

// templateFiles adds the template-only README (copied verbatim), the
// .env.example and the .github directory.
func templateFiles(opts Options) ([]copyJob, error) {
	var jobs []copyJob

	readme := filepath.Join(opts.TemplateFilesDir, "README.md")
	if fileExists(readme) {
		jobs = append(jobs, copyJob{src: readme, dest: "README.md"})
	}
	env := filepath.Join(opts.TemplateFilesDir, ".env.example")
	if fileExists(env) {
		jobs = append(jobs, copyJob{src: env, dest: ".env.example", replace: true})
	}

	github := filepath.Join(opts.TemplateFilesDir, ".github")
	if info, err := os.Stat(github); err == nil && info.IsDir() {
		err := filepath.WalkDir(github, func(p string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return err
			}
			rel, err := filepath.Rel(github, p)
			if err != nil {
				return err
			}
			jobs = append(jobs, copyJob{
				src:     p,
				dest:    path.Join(".github", filepath.ToSlash(rel)),
				replace: true,
			})
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", github, err)
		}
	}
	return jobs, nil
}

// Excluded reports whether rel matches any pattern. A pattern matches as a
// substring of the path, as the exact file name, or as a *.ext suffix.
func Excluded(rel string, patterns []string) bool {
	name := path.Base(rel)
	if slices.Contains(alwaysKept, name) {
		return false
	}
	for _, p := range patterns {
		if strings.Contains(rel, p) || name == p {
			return true
		}
		if strings.HasPrefix(p, "*.") && strings.HasSuffix(name, p[1:]) {
			return true
		}
	}
	return false
}

// Rename applies every substring rename to rel.
func Rename(rel string, renames map[string]string) string {
	keys := make([]string, 0, len(renames))
	for k := range renames {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		rel = strings.ReplaceAll(rel, k, renames[k])
	}
	return rel
}

// IsText reports whether placeholders are substituted in the named file.
func IsText(name string) bool {
	base := path.Base(filepath.ToSlash(name))
	return slices.Contains(textExtensions, path.Ext(base)) || slices.Contains(textNames, base)
}

func copyFile(src, dest string, replace bool, opts Options) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	info, err := os.Stat(src)
	if err != nil {
		return err
	}

	if replace && IsText(src) && utf8.Valid(data) {
		data = bytes.ReplaceAll(data, []byte(opts.ProjectName), []byte(opts.Placeholder))
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	return os.WriteFile(dest, data, info.Mode().Perm())
}

func fileExists(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.Mode().IsRegular()
}
