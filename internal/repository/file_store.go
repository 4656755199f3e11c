// internal/repository/file_store.go
package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"go_4_vocab_quiz/internal/middleware"
	"go_4_vocab_quiz/internal/model"

	"gopkg.in/yaml.v3"
)

// 対応する拡張子 (同名ファイルが複数ある場合はこの順で優先)
var supportedExts = []string{".json", ".yaml", ".yml"}

// FileStore はディレクトリ内の単語帳ファイル (voca1.json, voca2.yaml ...) を読み込むストアです。
// ファイル名から拡張子を除いたもの (stem) が単語帳IDになります。
//
//	{"chat": {"german": "Katze"}, "chien": {"german": "Hund"}}
type FileStore struct {
	dir     string
	pattern string
}

func NewFileStore(dir, pattern string) (*FileStore, error) {
	if pattern == "" {
		pattern = "*"
	}
	if _, err := filepath.Match(pattern, ""); err != nil {
		return nil, fmt.Errorf("NewFileStore: invalid pattern %q: %w", pattern, err)
	}
	return &FileStore{dir: dir, pattern: pattern}, nil
}

func (s *FileStore) ListIDs(ctx context.Context) ([]string, error) {
	logger := middleware.GetLogger(ctx)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		logger.Error("Error reading vocabulary directory", slog.String("dir", s.dir), slog.Any("error", err))
		return nil, fmt.Errorf("FileStore.ListIDs: %w", err)
	}

	seen := make(map[string]string, len(entries))
	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ext := filepath.Ext(name)
		if !isSupportedExt(ext) {
			continue
		}
		stem := strings.TrimSuffix(name, ext)
		if !s.matches(stem) {
			continue
		}
		if prev, ok := seen[stem]; ok {
			logger.Warn("Duplicate vocabulary list name, later file ignored",
				slog.String("list_id", stem), slog.String("used", prev), slog.String("ignored", name))
			continue
		}
		seen[stem] = name
		ids = append(ids, stem)
	}
	return ids, nil
}

func (s *FileStore) Fetch(ctx context.Context, id string) ([]model.RawEntry, error) {
	logger := middleware.GetLogger(ctx)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	// パス操作を含むIDや、パターン外のIDは存在しないものとして扱う
	if id == "" || id != filepath.Base(id) || strings.HasPrefix(id, ".") || !s.matches(id) {
		return nil, fmt.Errorf("FileStore.Fetch %q: %w", id, model.ErrNotFound)
	}

	for _, ext := range supportedExts {
		path := filepath.Join(s.dir, id+ext)
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			logger.Error("Error reading vocabulary file", slog.String("path", path), slog.Any("error", err))
			return nil, fmt.Errorf("FileStore.Fetch %q: %w", id, err)
		}

		var entries []model.RawEntry
		if ext == ".json" {
			entries, err = decodeJSONEntries(data)
		} else {
			entries, err = decodeYAMLEntries(data)
		}
		if err != nil {
			logger.Warn("Vocabulary file could not be parsed", slog.String("path", path), slog.Any("error", err))
			return nil, fmt.Errorf("FileStore.Fetch %q: %w", id, err)
		}
		return entries, nil
	}
	return nil, fmt.Errorf("FileStore.Fetch %q: %w", id, model.ErrNotFound)
}

func (s *FileStore) matches(stem string) bool {
	ok, _ := filepath.Match(s.pattern, stem)
	return ok
}

func isSupportedExt(ext string) bool {
	for _, e := range supportedExts {
		if e == ext {
			return true
		}
	}
	return false
}

// decodeJSONEntries はトップレベルのオブジェクトをキーの出現順を保ったまま読み込みます
func decodeJSONEntries(data []byte) ([]model.RawEntry, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, model.ErrMalformedData)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("top-level value must be an object: %w", model.ErrMalformedData)
	}

	var entries []model.RawEntry
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%v: %w", err, model.ErrMalformedData)
		}
		key, _ := tok.(string)

		var fields map[string]any
		if err := dec.Decode(&fields); err != nil {
			return nil, fmt.Errorf("record %q is not an object: %v: %w", key, err, model.ErrMalformedData)
		}
		entries = append(entries, model.RawEntry{Key: key, Fields: fields})
	}
	// 閉じ括弧
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("%v: %w", err, model.ErrMalformedData)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("unexpected data after top-level object: %w", model.ErrMalformedData)
	}
	return entries, nil
}

// decodeYAMLEntries は yaml.Node を使ってマッピングの順序を保ったまま読み込みます
func decodeYAMLEntries(data []byte) ([]model.RawEntry, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%v: %w", err, model.ErrMalformedData)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, fmt.Errorf("empty document: %w", model.ErrMalformedData)
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("top-level value must be a mapping: %w", model.ErrMalformedData)
	}

	entries := make([]model.RawEntry, 0, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		keyNode, valueNode := root.Content[i], root.Content[i+1]
		if keyNode.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("line %d: key must be a scalar: %w", keyNode.Line, model.ErrMalformedData)
		}
		var fields map[string]any
		if err := valueNode.Decode(&fields); err != nil {
			return nil, fmt.Errorf("record %q is not a mapping: %v: %w", keyNode.Value, err, model.ErrMalformedData)
		}
		entries = append(entries, model.RawEntry{Key: keyNode.Value, Fields: fields})
	}
	return entries, nil
}
