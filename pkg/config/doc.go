// Package config loads typed configuration structs from environment
// variables (and an optional .env file) using struct tags.
//
// Every infrastructure package in this module declares its own Config struct
// with `env` tags; services load them once at startup:
//
//	var mongoCfg mongo.Config
//	config.MustLoad(&mongoCfg)
//
// Loaded values are cached per type so the same configuration is observed
// everywhere in the process.
package config
