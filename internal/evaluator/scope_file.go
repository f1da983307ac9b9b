package evaluator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/go-logr/logr"
	"gopkg.in/yaml.v3"
)

// FileScope reads bindings from a YAML mapping of name to number and can
// follow changes to the file.
type FileScope struct {
	path string
	log  logr.Logger

	mu   sync.RWMutex
	vars map[string]any
}

// LoadFileScope reads path once. The returned scope keeps its last good
// bindings when later reloads fail.
func LoadFileScope(path string, log logr.Logger) (*FileScope, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve scope file: %w", err)
	}
	f := &FileScope{path: abs, log: log}
	if err := f.Reload(); err != nil {
		return nil, err
	}
	return f, nil
}

// Path returns the absolute file path.
func (f *FileScope) Path() string {
	return f.path
}

// Scope implements ScopeSource.
func (f *FileScope) Scope() map[string]any {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make(map[string]any, len(f.vars))
	for k, v := range f.vars {
		out[k] = v
	}
	return out
}

// Reload re-reads the file and swaps the bindings in on success.
func (f *FileScope) Reload() error {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return fmt.Errorf("read scope file: %w", err)
	}
	vars, err := DecodeScopeYAML(data)
	if err != nil {
		return fmt.Errorf("decode scope file %s: %w", f.path, err)
	}
	f.mu.Lock()
	f.vars = vars
	f.mu.Unlock()
	return nil
}

// DecodeScopeYAML decodes a YAML mapping of variable names to numbers.
// An empty document is an empty scope.
func DecodeScopeYAML(data []byte) (map[string]any, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	out := make(map[string]any, len(raw))
	for k, v := range raw {
		if !isIdentifier(k) {
			return nil, fmt.Errorf("invalid variable name %q", k)
		}
		nv, err := NormalizeValue(v)
		if err != nil {
			return nil, fmt.Errorf("variable %q: %w", k, err)
		}
		out[k] = nv
	}
	return out, nil
}

// Watch reloads the file whenever it is written or replaced, calling onChange
// with the reload outcome. The parent directory is watched so editors that
// save via rename are followed. Watch blocks until ctx is done.
func (f *FileScope) Watch(ctx context.Context, onChange func(error)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(f.path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(f.path), err)
	}
	f.log.V(1).Info("watching scope file", "path", f.path)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != f.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			err := f.Reload()
			if err != nil {
				f.log.Error(err, "scope file reload failed", "path", f.path)
			} else {
				f.log.V(1).Info("scope file reloaded", "path", f.path)
			}
			if onChange != nil {
				onChange(err)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			f.log.Error(err, "scope file watcher error", "path", f.path)
		}
	}
}
