package registry

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFile reads a catalog definition from a YAML file and builds a
// validated Registry. Deployments use it to override the built-in catalog.
//
// Example definition:
//
//	modules:
//	  - code: accounting
//	    name: Accounting
//	    permissions:
//	      - id: accounting.vouchers.create
//	      - id: accounting.vouchers.approve
//	bundles:
//	  - id: starter
//	    name: Starter
//	    modules: [accounting]
//	dependencies:
//	  hr: [accounting]
func LoadFile(path string) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("registry: open catalog: %w", err)
	}
	defer f.Close()

	return Load(f)
}

// Load reads a YAML catalog definition from the reader.
func Load(r io.Reader) (*Registry, error) {
	var cfg Config
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, errors.Join(ErrInvalidCatalog, err)
	}
	return New(cfg)
}
