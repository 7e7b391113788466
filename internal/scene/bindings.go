package scene

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// AssetRef maps one model file to the pre-generated entity that receives it.
type AssetRef struct {
	File string `yaml:"file"`
	ID   uint32 `yaml:"id"`
}

// Bindings is the Systems block of systems.yml: per system, named settings
// such as which entity holds the clock or which entity the camera follows.
type Bindings struct {
	path    string
	systems map[string]map[string]yaml.Node
}

// LoadBindings parses a systems.yml file.
func LoadBindings(path string) (*Bindings, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigLoadError{Path: path, Err: fmt.Errorf("read systems: %w", err)}
	}
	var f systemsFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, &ConfigLoadError{Path: path, Err: fmt.Errorf("parse systems: %w", err)}
	}
	if f.Systems == nil {
		return nil, &ConfigLoadError{Path: path, Err: fmt.Errorf("missing Systems block")}
	}
	return &Bindings{path: path, systems: f.Systems}, nil
}

// Has reports whether the system has a block at all.
func (b *Bindings) Has(system string) bool {
	_, ok := b.systems[system]
	return ok
}

// HasKey reports whether system has a setting named key.
func (b *Bindings) HasKey(system, key string) bool {
	_, ok := b.systems[system][key]
	return ok
}

// Entity returns the pre-generated entity index bound to system.key. A value
// of "none" yields 0.
func (b *Bindings) Entity(system, key string) (uint32, error) {
	n, err := b.node(system, key)
	if err != nil {
		return 0, err
	}
	var ref entityRef
	if err := n.Decode(&ref); err != nil {
		return 0, &ConfigLoadError{Path: b.path, Err: fmt.Errorf("%s.%s: %w", system, key, err)}
	}
	return uint32(ref), nil
}

// Decode unmarshals system.key into out.
func (b *Bindings) Decode(system, key string, out any) error {
	n, err := b.node(system, key)
	if err != nil {
		return err
	}
	if err := n.Decode(out); err != nil {
		return &ConfigLoadError{Path: b.path, Err: fmt.Errorf("%s.%s: %w", system, key, err)}
	}
	return nil
}

// Assets returns the model file translation table of system, keyed by file
// name. The map is a fresh copy the caller may consume.
func (b *Bindings) Assets(system string) (map[string]uint32, error) {
	block, ok := b.systems[system]
	if !ok {
		return nil, &ConfigLoadError{Path: b.path, Err: fmt.Errorf("no %s block", system)}
	}
	keys := make([]string, 0, len(block))
	for k := range block {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(map[string]uint32, len(block))
	for _, k := range keys {
		n := block[k]
		var ref AssetRef
		if err := n.Decode(&ref); err != nil {
			return nil, &ConfigLoadError{Path: b.path, Err: fmt.Errorf("%s.%s: %w", system, k, err)}
		}
		if ref.File == "" || ref.ID == 0 {
			return nil, &ConfigLoadError{Path: b.path, Err: fmt.Errorf("%s.%s: file and id are required", system, k)}
		}
		if prev, dup := out[ref.File]; dup && prev != ref.ID {
			return nil, &ConfigLoadError{Path: b.path, Err: fmt.Errorf("%s: %s bound to %d and %d", system, ref.File, prev, ref.ID)}
		}
		out[ref.File] = ref.ID
	}
	return out, nil
}

func (b *Bindings) node(system, key string) (*yaml.Node, error) {
	block, ok := b.systems[system]
	if !ok {
		return nil, &ConfigLoadError{Path: b.path, Err: fmt.Errorf("no %s block", system)}
	}
	n, ok := block[key]
	if !ok {
		return nil, &ConfigLoadError{Path: b.path, Err: fmt.Errorf("%s has no %q", system, key)}
	}
	return &n, nil
}
