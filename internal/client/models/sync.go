package models

// SyncMeta is the synchronization bookkeeping attached to every persisted
// record. Version starts at 1 and only grows through local mutations or by
// adopting a remote copy. A record with Synced == false is pending push.
type SyncMeta struct {
	Synced       bool
	Version      int64
	LastModified int64
	SyncError    *string
}

// Pending reports whether the record still has to be pushed.
func (m SyncMeta) Pending() bool { return !m.Synced }

// ErrorText returns the last push failure, or "" when there is none.
func (m SyncMeta) ErrorText() string {
	if m.SyncError == nil {
		return ""
	}
	return *m.SyncError
}
