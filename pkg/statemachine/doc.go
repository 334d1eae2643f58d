// Package statemachine provides a small, thread-safe finite state machine
// with guarded transitions and transition actions.
//
// The tenant provisioning saga uses it to track its progress
// (not_started → tenant_created → … → complete, with rolling_back and
// failed branches), so that the rollback path can decide which compensating
// actions still apply.
package statemachine
