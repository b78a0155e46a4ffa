// Package app provides the scaffolding every host shares: database pool
// setup, embedded schema migrations, the base router with its middleware
// chain and operational endpoints, version lifecycle configuration, and the
// HTTP server lifecycle. Hosts compose these pieces in their wiring structs
// and keep only resource registration to themselves.
package app
