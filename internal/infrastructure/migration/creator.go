package migration

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var (
	nameCleaner   = regexp.MustCompile(`[^a-z0-9]+`)
	versionPrefix = regexp.MustCompile(`^(\d+)_`)
)

// Pair is an up/down migration file pair
type Pair struct {
	Version  int
	Name     string
	UpPath   string
	DownPath string
}

// Create writes the next numbered up/down pair into dir
func Create(dir, name string) (*Pair, error) {
	clean := strings.Trim(nameCleaner.ReplaceAllString(strings.ToLower(name), "_"), "_")
	if clean == "" {
		return nil, errors.New("migration name must contain letters or digits")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create migrations dir: %w", err)
	}

	existing, err := List(os.DirFS(dir))
	if err != nil {
		return nil, err
	}
	next := 1
	if len(existing) > 0 {
		next = existing[len(existing)-1].Version + 1
	}

	base := fmt.Sprintf("%06d_%s", next, clean)
	p := &Pair{
		Version:  next,
		Name:     clean,
		UpPath:   filepath.Join(dir, base+".up.sql"),
		DownPath: filepath.Join(dir, base+".down.sql"),
	}
	if err := os.WriteFile(p.UpPath, []byte("-- "+clean+"\n\n"), 0o644); err != nil {
		return nil, err
	}
	if err := os.WriteFile(p.DownPath, []byte("-- rollback "+clean+"\n\n"), 0o644); err != nil {
		_ = os.Remove(p.UpPath)
		return nil, err
	}
	return p, nil
}

// List returns the migration pairs in fsys sorted by version
func List(fsys fs.FS) ([]Pair, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}
	byVersion := map[int]*Pair{}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		m := versionPrefix.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		version, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		p, ok := byVersion[version]
		if !ok {
			p = &Pair{Version: version}
			byVersion[version] = p
		}
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			p.UpPath = name
			p.Name = strings.TrimSuffix(strings.TrimPrefix(name, m[0]), ".up.sql")
		case strings.HasSuffix(name, ".down.sql"):
			p.DownPath = name
		}
	}

	out := make([]Pair, 0, len(byVersion))
	for _, p := range byVersion {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}
