package registry

import "errors"

var (
	// ErrInvalidCatalog is returned for structural catalog problems:
	// duplicate codes, empty ids, references to unknown modules.
	ErrInvalidCatalog = errors.New("registry: invalid catalog")

	// ErrCyclicDependency is returned when the module dependency relation
	// contains a cycle. Dependencies must form a DAG.
	ErrCyclicDependency = errors.New("registry: cyclic module dependency")

	// ErrUnknownBundle is returned when a bundle id is not in the catalog.
	ErrUnknownBundle = errors.New("registry: unknown bundle")

	// ErrUnknownModule is returned when a module code is not in the catalog.
	ErrUnknownModule = errors.New("registry: unknown module")
)
