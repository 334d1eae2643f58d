package module

import "errors"

// ErrInstallationNotFound is returned when a (tenant, module) record is absent.
var ErrInstallationNotFound = errors.New("module: installation not found")
