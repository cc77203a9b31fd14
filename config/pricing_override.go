package config

import (
	"fmt"
	"os"
	"sync"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"github.com/anthropics/swarmrun/runtime/contracts"
)

// pricingFile is the on-disk shape of a pricing override file: a flat map
// from "provider" or "provider:model" to its per-1K rates.
type pricingFile struct {
	Entries map[string]contracts.PricingEntry `yaml:"pricing"`
}

// LoadPricingOverride reads a YAML pricing override file.
func LoadPricingOverride(path string) (map[string]contracts.PricingEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading pricing override %s: %w", path, err)
	}
	var parsed pricingFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("config: parsing pricing override %s: %w", path, err)
	}
	return parsed.Entries, nil
}

// PricingWatcher watches a pricing override file for changes via fsnotify
// and invokes onChange with the freshly parsed entries whenever it is
// written. Reload errors are delivered to onError rather than panicking the
// watch goroutine, so a transient partial write does not take the table
// down.
type PricingWatcher struct {
	watcher *fsnotify.Watcher
	path    string

	mu      sync.Mutex
	stopped bool
}

// WatchPricingFile starts watching path; callers should defer Close on the
// returned PricingWatcher.
func WatchPricingFile(path string, onChange func(map[string]contracts.PricingEntry), onError func(error)) (*PricingWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("config: creating fsnotify watcher: %w", err)
	}
	if err := w.Add(path); err != nil {
		w.Close()
		return nil, fmt.Errorf("config: watching %s: %w", path, err)
	}

	pw := &PricingWatcher{watcher: w, path: path}

	go func() {
		for {
			select {
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				entries, err := LoadPricingOverride(path)
				if err != nil {
					if onError != nil {
						onError(err)
					}
					continue
				}
				onChange(entries)
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				if onError != nil {
					onError(err)
				}
			}
		}
	}()

	return pw, nil
}

// Close stops the watcher goroutine.
func (w *PricingWatcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return nil
	}
	w.stopped = true
	return w.watcher.Close()
}
