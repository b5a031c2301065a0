package health

import (
	"fmt"
	"net/http"
	"time"

	"github.com/pleira/celest/internal/eop"
)

// SnapshotSource publishes the current table snapshot.
type SnapshotSource interface {
	Current() *eop.Snapshot
}

// Healthz returns 200 "ok\n" unconditionally.
func Healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok\n"))
}

// Readyz reports ready while the published snapshot is younger than maxAge.
// A zero maxAge disables the age check.
func Readyz(src SnapshotSource, maxAge time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		snap := src.Current()
		if snap == nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("no tables\n"))
			return
		}
		if age := time.Since(snap.LoadedAt); maxAge > 0 && age > maxAge {
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprintf(w, "tables stale: version %d loaded %s ago\n", snap.Version, age.Round(time.Second))
			return
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "ready: version %d from %s\n", snap.Version, snap.Source)
	}
}
