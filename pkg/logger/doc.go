// Package logger builds configured log/slog loggers and provides attribute
// helpers shared across services (tenant, user, role and module attrs).
//
// The provisioning saga and the authorization layer accept a *slog.Logger
// built by this package; nothing in the module logs through a global.
package logger
