// Package cli implements the tasktree command line: running and
// validating tree files, planning Vercel deploys, and reading the run
// history journal.
package cli
