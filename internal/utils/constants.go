package utils

// StoreName is the logical name of the sync config database; its slot
// files are named "<StoreName>.<slot>" inside the state directory.
const StoreName = "syncs"

// CipherPurposeStore scopes the key derived for the sync config database
// so future stores never share it.
const CipherPurposeStore = "sync-configs"

// DefaultDebounceSeconds is how long the watch loop waits for filesystem
// activity to settle before reconciling.
const DefaultDebounceSeconds = 2

// Schema version
const SchemaVersion = "1.0"
