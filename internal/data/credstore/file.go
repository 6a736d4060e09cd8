package credstore

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/bytedance/sonic"
	"github.com/fsnotify/fsnotify"

	"github.com/kreta-tools/go-kreta-bridge/internal/data/kreta"
	"github.com/kreta-tools/go-kreta-bridge/internal/util"
)

// FileStore serves credentials from a json file on disk and keeps them fresh
// with a filesystem watcher, so a password change does not need a restart.
type FileStore struct {
	path    string
	watcher *fsnotify.Watcher

	mu    sync.RWMutex
	creds kreta.Credentials
}

// LoadFile reads a credentials file once, without watching
func LoadFile(path string) (*kreta.Credentials, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading credentials file: %w", err)
	}

	var creds kreta.Credentials
	if err := sonic.Unmarshal(raw, &creds); err != nil {
		return nil, fmt.Errorf("credentials file %s is not valid json: %w", path, err)
	}
	if err := creds.Validate(); err != nil {
		return nil, fmt.Errorf("credentials file %s: %w", path, err)
	}
	return &creds, nil
}

// NewFileStore loads the file and starts watching its directory for changes.
// Watching the directory instead of the file survives editors that replace
// the file on save.
func NewFileStore(path string) (*FileStore, error) {
	creds, err := LoadFile(path)
	if err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watching %s: %w", filepath.Dir(path), err)
	}

	fs := &FileStore{
		path:    path,
		watcher: watcher,
		creds:   *creds,
	}
	go fs.processEvents()

	return fs, nil
}

func (fs *FileStore) processEvents() {
	for {
		select {
		case event, ok := <-fs.watcher.Events:
			if !ok {
				return
			}
			if event.Name != fs.path {
				continue
			}
			if event.Op.Has(fsnotify.Write) || event.Op.Has(fsnotify.Create) {
				fs.reload()
			}

		case err, ok := <-fs.watcher.Errors:
			if !ok {
				return
			}
			// Log error but continue running
			util.LogError("credentials file watch error: " + err.Error())
		}
	}
}

// reload swaps in the new file content; a broken edit keeps the last good
// credentials in place.
func (fs *FileStore) reload() {
	creds, err := LoadFile(fs.path)
	if err != nil {
		util.LogWarnf("credentials file changed but did not load, keeping previous: %v", err)
		return
	}

	fs.mu.Lock()
	fs.creds = *creds
	fs.mu.Unlock()
	util.LogInfof("reloaded credentials for %s from %s", creds.Username, fs.path)
}

// Credentials returns a copy of the current credentials
func (fs *FileStore) Credentials() kreta.Credentials {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	return fs.creds
}

// Close stops the watcher
func (fs *FileStore) Close() error {
	return fs.watcher.Close()
}
