package engine

import (
	"context"
	"time"

	"github.com/syncpad/syncpad/internal/snapshot"
	"github.com/syncpad/syncpad/pkg/logger"
)

// RunAutosave periodically hands every document to the snapshot collaborator
// until ctx is done. The store snapshot is taken under the engine lock; the
// saves themselves happen outside it so slow storage never stalls sync.
func (e *Engine) RunAutosave(ctx context.Context, saver snapshot.Saver, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			docs := e.ListDocuments()
			saved := 0
			for _, d := range docs {
				if err := saver.Save(ctx, snapshot.FromDocument(d)); err != nil {
					logger.Warnf("autosave of %s failed: %v", d.ID, err)
					continue
				}
				saved++
			}
			logger.Infof("auto-saved %d documents at %s", saved, time.Now().UTC().Format(time.RFC3339))
		}
	}
}

// RestoreSnapshots loads previously saved snapshots back into the store at
// boot. Best effort: the seeded default document exists regardless, and a
// failing saver only costs the restored copies.
func (e *Engine) RestoreSnapshots(ctx context.Context, saver snapshot.Saver) {
	snaps, err := saver.LoadAll(ctx)
	if err != nil {
		logger.Warnf("snapshot restore failed: %v", err)
		return
	}
	for _, s := range snaps {
		e.store.Restore(s.ToDocument())
	}
	if len(snaps) > 0 {
		logger.Infof("restored %d document snapshots", len(snaps))
	}
}
