package store

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Codec converts between a settings file and its flat key/value form.
type Codec interface {
	Name() string
	Decode(data []byte) (map[string]string, error)
	Encode(values map[string]string) ([]byte, error)
}

// Codecs for File.
var (
	TOML Codec = tomlCodec{}
	YAML Codec = yamlCodec{}
)

// File is a Store backed by a single settings file. The whole file is read
// on open and rewritten atomically on every Set.
type File struct {
	path  string
	codec Codec

	mu     sync.Mutex
	values map[string]string
}

// OpenFile reads path with codec. A missing file is an empty store; it is
// created on the first Set.
func OpenFile(path string, codec Codec) (*File, error) {
	f := &File{path: path, codec: codec, values: map[string]string{}}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return f, nil
		}
		return nil, fmt.Errorf("failed to read settings %s: %w", path, err)
	}

	values, err := codec.Decode(data)
	if err != nil {
		// A malformed file should fail loudly rather than be overwritten.
		return nil, fmt.Errorf("failed to parse %s settings %s: %w", codec.Name(), path, err)
	}
	f.values = values
	return f, nil
}

// Path returns the settings file path.
func (f *File) Path() string {
	return f.path
}

// Get implements Store.
func (f *File) Get(_ context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.values[key]
	return v, ok, nil
}

// Set implements Store. The in-memory state only changes once the file has
// been replaced.
func (f *File) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	next := make(map[string]string, len(f.values)+1)
	for k, v := range f.values {
		next[k] = v
	}
	next[key] = value

	data, err := f.codec.Encode(next)
	if err != nil {
		return writeError(key, err)
	}
	if err := writeAtomic(f.path, data); err != nil {
		return writeError(key, err)
	}
	f.values = next
	return nil
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

type tomlCodec struct{}

func (tomlCodec) Name() string { return "toml" }

func (tomlCodec) Decode(data []byte) (map[string]string, error) {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return flatten(raw), nil
}

func (tomlCodec) Encode(values map[string]string) ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(values); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type yamlCodec struct{}

func (yamlCodec) Name() string { return "yaml" }

func (yamlCodec) Decode(data []byte) (map[string]string, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return flatten(raw), nil
}

func (yamlCodec) Encode(values map[string]string) ([]byte, error) {
	return yaml.Marshal(values)
}

// flatten keeps scalar values, rendering non-strings in their canonical text
// form so hand-edited files like `enableAutoScale = true` still load.
// Nested tables are ignored.
func flatten(raw map[string]any) map[string]string {
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		switch t := v.(type) {
		case string:
			out[k] = t
		case bool:
			out[k] = strconv.FormatBool(t)
		case int:
			out[k] = strconv.Itoa(t)
		case int64:
			out[k] = strconv.FormatInt(t, 10)
		case float64:
			out[k] = strconv.FormatFloat(t, 'f', -1, 64)
		}
	}
	return out
}
