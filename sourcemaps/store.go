// Package sourcemaps loads JavaScript source maps from disk and uses them to
// rewrite minified stack traces back to their original source locations.
package sourcemaps

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/retracehq/retrace/errext"
	"github.com/retracehq/retrace/lib/fsext"
)

// KeySource is the logical name under which the application bundle's source
// map is stored. It is currently the only key a Store is loaded with.
const KeySource = "source"

var (
	// ErrScriptsUnavailable is returned by Load when the configured directory
	// doesn't exist or can't be read.
	ErrScriptsUnavailable = errors.New("script files not available")

	// ErrNoSourceMap is returned by Load when no file in the directory matches
	// the expected source map naming.
	ErrNoSourceMap = errors.New("no source map file found")
)

// ParseError is returned by Load when the selected file isn't a valid JSON
// source map document.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("couldn't parse source map %s: %s", e.Path, e.Err.Error())
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// mapFilePattern matches the hashed bundle map emitted by the frontend build,
// e.g. "main.3b2f1a.js.map".
var mapFilePattern = regexp.MustCompile(`^main\.\w+\.js\.map$`)

// Document is a single parsed source map file. The raw bytes are kept since
// the consumer library works from the serialized form.
type Document struct {
	Version  int      `json:"version"`
	File     string   `json:"file"`
	Sources  []string `json:"sources"`
	Names    []string `json:"names"`
	Mappings string   `json:"mappings"`

	raw []byte
}

// Store is an immutable association from logical file keys to loaded source
// map documents. It is built once by Load, before any traffic is served, and
// is only read afterwards, so no locking guards it.
type Store struct {
	logger logrus.FieldLogger
	maps   map[string]*Document
}

// Load scans dir for the application bundle's source map, parses it and
// returns a Store holding it under [KeySource]. Exactly one matching file is
// expected; if several are present the lexicographically smallest name wins
// and the rest are reported in a warning.
func Load(fs fsext.Fs, logger logrus.FieldLogger, dir string) (*Store, error) {
	isDir, err := fsext.IsDir(fs, dir)
	if err != nil || !isDir {
		return nil, errext.WithHint(
			fmt.Errorf("%w: %q is not a readable directory", ErrScriptsUnavailable, dir),
			"point --maps-dir at the directory holding the built frontend bundle",
		)
	}

	infos, err := fsext.ReadDir(fs, dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrScriptsUnavailable, err)
	}

	var names []string
	for _, info := range infos {
		if !info.IsDir() && mapFilePattern.MatchString(info.Name()) {
			names = append(names, info.Name())
		}
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%w in %q", ErrNoSourceMap, dir)
	}
	sort.Strings(names)
	if len(names) > 1 {
		logger.WithField("ignored", names[1:]).Warnf(
			"Multiple source maps found in %q, using %q", dir, names[0])
	}

	path := filepath.Join(dir, names[0])
	data, err := fsext.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("couldn't read source map %s: %w", path, err)
	}

	doc := &Document{raw: data}
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	logger.WithFields(logrus.Fields{"path": path, "sources": len(doc.Sources)}).
		Debug("Loaded source map")

	return &Store{
		logger: logger,
		maps:   map[string]*Document{KeySource: doc},
	}, nil
}

// Get returns the document stored under key. Absent keys are not an error,
// they just mean no remapping is possible.
func (s *Store) Get(key string) (*Document, bool) {
	if s == nil {
		return nil, false
	}
	doc, ok := s.maps[key]
	return doc, ok
}
