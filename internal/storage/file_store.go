package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"tokend/internal/providers"

	json "github.com/goccy/go-json"
)

type snapshot struct {
	Records map[string][]byte `json:"records"`
}

// FileStore is a LocalStore held in memory and written through to a single
// zstd-compressed snapshot file on every change. Writes go to a temp file
// which is renamed over the snapshot.
type FileStore struct {
	mu         sync.RWMutex
	path       string
	records    map[string][]byte
	compressor CompressorInterface
	logger     providers.Logger
}

func NewFileStore(path string, compressor CompressorInterface, logger providers.Logger) (*FileStore, error) {
	f := &FileStore{
		path:       path,
		records:    make(map[string][]byte),
		compressor: compressor,
		logger:     logger,
	}
	if err := f.load(); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *FileStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	v, ok := f.records[key]
	if !ok {
		return nil, false, nil
	}
	return slices.Clone(v), true, nil
}

func (f *FileStore) Set(_ context.Context, key string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	prev, had := f.records[key]
	f.records[key] = slices.Clone(value)
	if err := f.write(); err != nil {
		if had {
			f.records[key] = prev
		} else {
			delete(f.records, key)
		}
		return err
	}
	return nil
}

func (f *FileStore) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	prev, had := f.records[key]
	if !had {
		return nil
	}
	delete(f.records, key)
	if err := f.write(); err != nil {
		f.records[key] = prev
		return err
	}
	return nil
}

// Keys returns all keys starting with prefix, sorted.
func (f *FileStore) Keys(_ context.Context, prefix string) ([]string, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	var keys []string
	for k := range f.records {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	return keys, nil
}

func (f *FileStore) Close() error {
	f.compressor.Close()
	return nil
}

func (f *FileStore) load() error {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	decompressed, err := f.compressor.Decompress(data)
	if err != nil {
		return fmt.Errorf("decompress %s: %w", f.path, err)
	}

	var snap snapshot
	if err := json.Unmarshal(decompressed, &snap); err != nil {
		return fmt.Errorf("parse %s: %w", f.path, err)
	}
	if snap.Records != nil {
		f.records = snap.Records
	}
	f.logger.Infof(providers.TypeApp, "Loaded %d records from %s", len(f.records), f.path)
	return nil
}

// write must be called with f.mu held.
func (f *FileStore) write() error {
	jsonData, err := json.Marshal(snapshot{Records: f.records})
	if err != nil {
		return err
	}
	data, err := f.compressor.Compress(jsonData)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
		return err
	}

	tmpFile := f.path + ".tmp"
	file, err := os.Create(tmpFile)
	if err != nil {
		return err
	}
	if _, err = file.Write(data); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}
	if err = file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}
	if err = file.Close(); err != nil {
		os.Remove(tmpFile)
		return err
	}
	return os.Rename(tmpFile, f.path)
}
