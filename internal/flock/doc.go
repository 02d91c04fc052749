// Package flock provides cross-platform file locking utilities.
//
// The task record file is shared between the HTTP server, the CLI importer,
// and any concurrent requests; an exclusive, non-blocking lock around each
// load/save keeps writers from interleaving. Locks work on both Unix and
// Windows systems.
//
// Usage:
//
//	file, _ := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0600)
//	if err := flock.Exclusive(file.Fd()); err != nil {
//	    // Lock not acquired - file is in use
//	}
//	defer flock.Unlock(file.Fd())
package flock
