// Package syncstate owns the transition rules of models.SyncMeta. Every
// change to the sync bookkeeping of a record goes through a Tracker so the
// rules live in one place:
//
//   - creation: version 1, unsynced
//   - local mutation: version+1, stamped now, unsynced, error cleared
//   - confirmed push: synced, error cleared, version untouched
//   - failed push: unsynced, error recorded, version untouched
//   - pulled copy: synced, version and timestamp taken from the remote
package syncstate

import (
	"github.com/dmitrijs2005/marketsales/internal/client/models"
	"github.com/dmitrijs2005/marketsales/internal/clock"
)

// Tracker stamps sync metadata using its clock. The zero value is not
// usable; build one with New.
type Tracker struct {
	clock clock.Clock
}

func New(c clock.Clock) *Tracker {
	return &Tracker{clock: c}
}

// NewMeta returns the metadata of a freshly created local record.
func (t *Tracker) NewMeta() models.SyncMeta {
	return models.SyncMeta{
		Synced:       false,
		Version:      1,
		LastModified: clock.Millis(t.clock.Now()),
	}
}

// MarkDirty records a local payload change.
func (t *Tracker) MarkDirty(m models.SyncMeta) models.SyncMeta {
	return models.SyncMeta{
		Synced:       false,
		Version:      m.Version + 1,
		LastModified: clock.Millis(t.clock.Now()),
	}
}

// MarkSynced records that the remote accepted this exact version.
func (t *Tracker) MarkSynced(m models.SyncMeta) models.SyncMeta {
	m.Synced = true
	m.SyncError = nil
	return m
}

// MarkFailed records a push failure without touching version or timestamp.
func (t *Tracker) MarkFailed(m models.SyncMeta, reason string) models.SyncMeta {
	m.Synced = false
	m.SyncError = &reason
	return m
}

// AdoptRemote returns the metadata of a record copied from the remote store.
func (t *Tracker) AdoptRemote(version, lastModified int64) models.SyncMeta {
	if version < 1 {
		version = 1
	}
	return models.SyncMeta{
		Synced:       true,
		Version:      version,
		LastModified: lastModified,
	}
}
