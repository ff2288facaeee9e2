// Package manifest handles ingot.toml runtime configuration.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/ingotvm/ingot/vm"
)

// FileName is the manifest file looked up by Load and FindAndLoad.
const FileName = "ingot.toml"

// Manifest represents an ingot.toml configuration file.
type Manifest struct {
	VM    VMConfig    `toml:"vm"`
	Store StoreConfig `toml:"store"`

	// Dir is the directory containing the ingot.toml file (set at load time).
	Dir string `toml:"-"`
}

// VMConfig configures the resource limits of a VM instance.
type VMConfig struct {
	StackCapacity int `toml:"stack-capacity"`
	HeapCells     int `toml:"heap-cells"`
}

// StoreConfig configures the program store.
type StoreConfig struct {
	Path string `toml:"path"`
}

// Default returns the configuration used when no manifest file exists.
func Default() *Manifest {
	m := &Manifest{}
	m.applyDefaults()
	return m
}

func (m *Manifest) applyDefaults() {
	if m.VM.StackCapacity == 0 {
		m.VM.StackCapacity = vm.DefaultStackCapacity
	}
	if m.VM.HeapCells == 0 {
		m.VM.HeapCells = vm.DefaultHeapCells
	}
	if m.Store.Path == "" {
		m.Store.Path = "programs.db"
	}
}

// Load parses an ingot.toml file from the given directory.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	m.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}
	m.applyDefaults()

	return &m, nil
}

// FindAndLoad walks up from startDir to find an ingot.toml file, then
// loads and returns the manifest. Returns the defaults if no manifest is
// found.
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return Default(), nil
		}
		dir = parent
	}
}

// VMSettings returns the vm.Config described by the manifest.
func (m *Manifest) VMSettings() vm.Config {
	return vm.Config{
		StackCapacity: m.VM.StackCapacity,
		HeapCells:     m.VM.HeapCells,
	}
}

// StorePath returns the program store path, resolved against the manifest
// directory when relative.
func (m *Manifest) StorePath() string {
	if filepath.IsAbs(m.Store.Path) || m.Dir == "" {
		return m.Store.Path
	}
	return filepath.Join(m.Dir, m.Store.Path)
}
