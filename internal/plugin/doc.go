// Package plugin defines how HTTP plugins are mounted: a Router capability
// passed to each Plugin, a ServeMux-backed route table with prefix groups,
// and Multi, which registers several plugins in order under shared Options.
package plugin
