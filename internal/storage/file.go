package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const fileRecordVersion = "1.0"

// fileRecord is the on-disk layout of a FileProvider.
type fileRecord struct {
	Version   string            `yaml:"version"`
	Timestamp time.Time         `yaml:"timestamp"`
	Entries   map[string]string `yaml:"entries"`
}

func newFileRecord() fileRecord {
	return fileRecord{
		Version:   fileRecordVersion,
		Timestamp: time.Now().UTC(),
		Entries:   make(map[string]string),
	}
}

// FileProvider keeps every entry in a single yaml file readable only by
// the owner. Each operation re-reads the file so a second process sees
// the latest commit.
type FileProvider struct {
	lock sync.Mutex
	path string
}

func NewFileProvider(dir string, name string) (*FileProvider, error) {
	dir, err := expandHome(dir)
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("failed to create storage directory: %w", err)
		}
	}

	return &FileProvider{
		path: filepath.Join(dir, fmt.Sprintf("%s.yaml", name)),
	}, nil
}

func (f *FileProvider) Path() string {
	return f.path
}

func (f *FileProvider) Get(_ context.Context, key string) (string, error) {
	f.lock.Lock()
	defer f.lock.Unlock()

	record, err := f.load()
	if err != nil {
		return "", err
	}

	value, ok := record.Entries[key]
	if !ok {
		return "", ErrNotFound
	}
	return value, nil
}

func (f *FileProvider) Set(_ context.Context, key string, value string) error {
	f.lock.Lock()
	defer f.lock.Unlock()

	record, err := f.load()
	if err != nil {
		return err
	}

	record.Entries[key] = value
	return f.commit(record)
}

func (f *FileProvider) Remove(_ context.Context, key string) error {
	f.lock.Lock()
	defer f.lock.Unlock()

	record, err := f.load()
	if err != nil {
		return err
	}

	if _, ok := record.Entries[key]; !ok {
		return nil
	}

	delete(record.Entries, key)
	return f.commit(record)
}

func (f *FileProvider) open() (*os.File, error) {
	// Only allow read/write access to the owner
	file, err := os.OpenFile(f.path, os.O_RDWR|os.O_CREATE, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage file: %w", err)
	}
	return file, nil
}

func (f *FileProvider) load() (fileRecord, error) {
	file, err := f.open()
	if err != nil {
		return fileRecord{}, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return fileRecord{}, fmt.Errorf("failed to read storage file: %w", err)
	}

	if len(data) == 0 {
		return newFileRecord(), nil
	}

	var record fileRecord
	if err := yaml.Unmarshal(data, &record); err != nil {
		// A corrupt file is reinitialised rather than blocking every read
		logrus.WithError(err).WithField("path", f.path).
			Errorln("Failed to parse storage file, reinitializing")
		return newFileRecord(), nil
	}

	if record.Entries == nil {
		record.Entries = make(map[string]string)
	}

	return record, nil
}

func (f *FileProvider) commit(record fileRecord) error {
	file, err := f.open()
	if err != nil {
		return err
	}
	defer file.Close()

	// Truncate the file to ensure clean write
	if err := file.Truncate(0); err != nil {
		return err
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return err
	}

	record.Timestamp = time.Now().UTC()

	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(2)
	if err := encoder.Encode(record); err != nil {
		return fmt.Errorf("failed to encode storage file: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return err
	}

	return file.Sync()
}

func expandHome(path string) (string, error) {
	if len(path) == 0 || path[0] != '~' {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, path[1:]), nil
}
