// Package application provides application initialization and dependency wiring.
// It registers the actuator plugins on a shared route table, wraps them with
// the HTTP middleware chain, and builds the server, keeping the main package
// focused on CLI parsing and orchestration.
package application
