// Package session defines the authenticated session data model and its
// secure persistence layer.
//
// Two logical records are persisted as serialized blobs in a host-supplied
// secure vault: the session list and the refresh-token list. They live under
// distinct vault keys, are independently serializable, and are independently
// corruptible -- corruption of either degrades to "treat as empty", never to
// an error surfaced to callers.
//
// The package also ships FileVault, a file-backed Vault implementation for
// hosts without an OS-level secret service. Files are created with 0600
// permissions inside a 0700 directory and key names are hashed so vault keys
// never appear on disk.
package session
