package content

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/adrg/frontmatter"
	"github.com/labstack/gommon/log"
)

var contentExts = map[string]bool{
	".md":       true,
	".mdx":      true,
	".markdown": true,
}

// FSStore reads collections from markdown files with YAML frontmatter laid
// out as <root>/<collection>/**/<name>.md.
type FSStore struct {
	fsys   fs.FS
	logger *log.Logger
}

// NewFSStore returns a store over fsys. A nil logger discards warnings.
func NewFSStore(fsys fs.FS, logger *log.Logger) *FSStore {
	if logger == nil {
		logger = quietLogger()
	}
	return &FSStore{fsys: fsys, logger: logger}
}

// NewDirStore returns an FSStore rooted at dir on the local filesystem.
func NewDirStore(dir string, logger *log.Logger) *FSStore {
	return NewFSStore(os.DirFS(dir), logger)
}

// GetCollection returns the valid records of c ordered by slug. Invalid
// records and duplicate slugs are logged and skipped.
func (s *FSStore) GetCollection(ctx context.Context, c Collection) ([]Record, error) {
	results, err := s.Load(ctx, c)
	if err != nil {
		return nil, err
	}
	records := make([]Record, 0, len(results))
	for _, r := range results {
		if !r.OK() {
			for _, p := range r.Problems {
				s.logger.Warnf("skipping %s: %s", r.Source, p)
			}
			continue
		}
		records = append(records, r.Record)
	}
	return records, nil
}

// Load parses and validates every file of c, returning valid and invalid
// results alike.
func (s *FSStore) Load(ctx context.Context, c Collection) ([]Result, error) {
	if !c.Valid() {
		return nil, Unavailable(c, fmt.Errorf("unknown collection %q", c))
	}
	if _, err := fs.Stat(s.fsys, "."); err != nil {
		return nil, Unavailable(c, fmt.Errorf("content root: %w", err))
	}
	dir := string(c)
	if _, err := fs.Stat(s.fsys, dir); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Warnf("collection %s has no directory, serving it empty", c)
			return nil, nil
		}
		return nil, Unavailable(c, err)
	}

	var results []Result
	seen := make(map[string]string)
	err := fs.WalkDir(s.fsys, dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !contentExts[strings.ToLower(path.Ext(p))] {
			return nil
		}
		r, err := s.parseFile(c, p)
		if err != nil {
			return err
		}
		if r.OK() {
			if prev, dup := seen[r.Record.Slug]; dup {
				r = Result{Source: p, Problems: []string{fmt.Sprintf("duplicate slug %q (already used by %s)", r.Record.Slug, prev)}}
			} else {
				seen[r.Record.Slug] = p
			}
		}
		results = append(results, r)
		return nil
	})
	if err != nil {
		return nil, Unavailable(c, err)
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Record.Slug < results[j].Record.Slug
	})
	return results, nil
}

func quietLogger() *log.Logger {
	l := log.New("content")
	l.SetLevel(log.OFF)
	return l
}

func (s *FSStore) parseFile(c Collection, p string) (Result, error) {
	raw, err := fs.ReadFile(s.fsys, p)
	if err != nil {
		return Result{}, fmt.Errorf("read %s: %w", p, err)
	}
	var fm Frontmatter
	if _, err := frontmatter.Parse(bytes.NewReader(raw), &fm); err != nil {
		return Result{Source: p, Problems: []string{"frontmatter: " + err.Error()}}, nil
	}
	slug := fm.Slug
	if slug == "" {
		slug = slugFromPath(strings.TrimPrefix(p, string(c)+"/"))
	}
	r := Validate(c, slug, fm)
	r.Source = p
	return r, nil
}
