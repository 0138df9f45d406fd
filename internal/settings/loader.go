package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

const (
	// DefaultFile is read when no settings files are configured.
	DefaultFile = "./settings.ts"
	// OverrideFile is always merged last.
	OverrideFile = ".env"
)

// Loader reads settings files and merges them into a Snapshot.
type Loader struct {
	baseDir     string
	defaultFile string
	readFile    func(string) ([]byte, error)
	logger      *zap.Logger
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithBaseDir resolves relative paths against dir instead of the working directory.
func WithBaseDir(dir string) LoaderOption {
	return func(l *Loader) {
		l.baseDir = dir
	}
}

// WithDefaultFile overrides the file read when no settings files are given.
func WithDefaultFile(path string) LoaderOption {
	return func(l *Loader) {
		l.defaultFile = path
	}
}

// WithReadFile overrides the file reader (primarily for tests).
func WithReadFile(fn func(string) ([]byte, error)) LoaderOption {
	return func(l *Loader) {
		l.readFile = fn
	}
}

// WithLogger sets the logger used to report skipped and loaded files.
func WithLogger(logger *zap.Logger) LoaderOption {
	return func(l *Loader) {
		l.logger = logger
	}
}

// NewLoader constructs a Loader reading from the working directory.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		defaultFile: DefaultFile,
		readFile:    os.ReadFile,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = zap.NewNop()
	}
	return l
}

// DefaultFile returns the file read when Load is called without files.
func (l *Loader) DefaultFile() string {
	return l.defaultFile
}

// Load reads files in order, each overriding keys of the previous ones, and
// finishes with OverrideFile. Missing files contribute nothing. A nil files
// reads the default file.
func (l *Loader) Load(files []string) (Snapshot, error) {
	merged := make(map[string]string)

	for _, file := range ResolveFiles(files, l.defaultFile) {
		path := l.resolvePath(file)
		data, err := l.readFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				l.logger.Debug("settings file not found, skipping", zap.String("path", path))
				continue
			}
			return Snapshot{}, fmt.Errorf("read settings file %s: %w", path, err)
		}

		parsed := parseFile(file, string(data))
		l.logger.Debug("settings file loaded", zap.String("path", path), zap.Int("keys", len(parsed)))
		maps.Copy(merged, parsed)
	}

	return Snapshot{values: merged}, nil
}

// ResolveFiles returns the read order for files: defaultFile when files is
// nil, duplicates collapsed to their first occurrence, and OverrideFile
// moved to the end. A non-nil empty list reads only OverrideFile.
func ResolveFiles(files []string, defaultFile string) []string {
	if files == nil {
		files = []string{defaultFile}
	}

	seen := make(map[string]struct{}, len(files))
	out := make([]string, 0, len(files)+1)
	for _, file := range files {
		if file == OverrideFile {
			continue
		}
		if _, ok := seen[file]; ok {
			continue
		}
		seen[file] = struct{}{}
		out = append(out, file)
	}
	return append(out, OverrideFile)
}

func (l *Loader) resolvePath(file string) string {
	if l.baseDir == "" || filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(l.baseDir, file)
}

func parseFile(name, content string) map[string]string {
	switch {
	case strings.HasSuffix(name, ".env"):
		return ParseDotenv(content)
	case strings.HasSuffix(name, ".ts"), strings.HasSuffix(name, ".js"):
		return ExtractDefaults(content)
	default:
		return map[string]string{}
	}
}
