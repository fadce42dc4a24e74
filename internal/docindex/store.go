package docindex

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mwiater/docqa/internal/util"
)

// Store persists indexes as JSON files under a root directory.
type Store struct {
	Root string
}

// NewStore returns a Store rooted at root. The directory is created on the
// first Save.
func NewStore(root string) *Store {
	return &Store{Root: root}
}

// DefaultIndexName derives the index file name for a source document.
func DefaultIndexName(source string) string {
	base := filepath.Base(source)
	return strings.TrimSuffix(base, filepath.Ext(base)) + "_index.json"
}

// Save writes idx as indented JSON and returns the path written. An empty
// outputPath derives the name from idx.File. A bare file name resolves under
// the store root. Any existing file is replaced atomically.
func (s *Store) Save(idx *Index, outputPath string) (string, error) {
	if idx == nil {
		return "", errors.New("save index: index is nil")
	}
	if outputPath == "" {
		outputPath = DefaultIndexName(idx.File)
	}
	if filepath.Base(outputPath) == outputPath {
		if err := os.MkdirAll(s.Root, 0o755); err != nil {
			return "", fmt.Errorf("create index directory: %w", err)
		}
		outputPath = filepath.Join(s.Root, outputPath)
	}

	data, err := EncodeIndex(idx)
	if err != nil {
		return "", err
	}
	if err := util.WriteFile(outputPath, data); err != nil {
		return "", fmt.Errorf("write index %s: %w", outputPath, err)
	}
	return outputPath, nil
}

// EncodeIndex renders idx the way Save writes it: two-space indent, HTML
// characters and non-ASCII text unescaped, no trailing newline.
func EncodeIndex(idx *Index) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(idx.normalized()); err != nil {
		return nil, fmt.Errorf("encode index: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// ResolvePath returns path if it exists, otherwise root/path if that
// exists, otherwise a NotFoundError.
func ResolvePath(path, root string) (string, error) {
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}
	if root != "" && !filepath.IsAbs(path) {
		alt := filepath.Join(root, path)
		if _, err := os.Stat(alt); err == nil {
			return alt, nil
		}
	}
	return "", &NotFoundError{Path: path, Err: fs.ErrNotExist}
}

// Load reads and validates an index file. pathOrName may be a path or a
// name relative to the store root.
func (s *Store) Load(pathOrName string) (*Index, error) {
	path, err := ResolvePath(pathOrName, s.Root)
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

// LoadFile reads and validates the index at path.
func LoadFile(path string) (*Index, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	if err := validateIndexJSON(path, data); err != nil {
		return nil, err
	}
	var idx Index
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	normalized := idx.normalized()
	return &normalized, nil
}

// LoadAll loads every *.json file one level below each sub-directory of
// root, sorted by path. A missing root yields no indexes.
func LoadAll(root string) ([]*Index, error) {
	paths, err := IndexFiles(root)
	if err != nil {
		return nil, err
	}
	indexes := make([]*Index, 0, len(paths))
	for _, path := range paths {
		idx, err := LoadFile(path)
		if err != nil {
			return nil, fmt.Errorf("load index: %w", err)
		}
		indexes = append(indexes, idx)
	}
	return indexes, nil
}

// IndexFiles lists the index files under the per-format sub-roots of root.
func IndexFiles(root string) ([]string, error) {
	dirs, err := os.ReadDir(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read index root %s: %w", root, err)
	}

	var paths []string
	for _, dir := range dirs {
		if !dir.IsDir() {
			continue
		}
		sub := filepath.Join(root, dir.Name())
		files, err := os.ReadDir(sub)
		if err != nil {
			return nil, fmt.Errorf("read index directory %s: %w", sub, err)
		}
		for _, f := range files {
			if f.Type().IsRegular() && strings.EqualFold(filepath.Ext(f.Name()), ".json") {
				paths = append(paths, filepath.Join(sub, f.Name()))
			}
		}
	}
	sort.Strings(paths)
	return paths, nil
}
