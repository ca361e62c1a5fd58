// Package runstore records batch runs and per-file outcomes in SQLite so
// past runs can be inspected after the process exits.
package runstore
