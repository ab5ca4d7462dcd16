// Package devicestate owns the authoritative status of devices.
//
// A status change is a compare-and-swap on the device's version: the caller
// names the version it observed and the change is applied only if the stored
// version still matches. Every accepted change bumps the version by exactly
// one and appends one audit entry in the same unit of work. A rejected change
// leaves nothing behind and reports the device as it is now committed.
//
// The package holds no locks of its own. Concurrent callers are serialized by
// the storage engine alone.
package devicestate
