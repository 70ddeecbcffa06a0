package store

import (
	"fmt"
	"net/http"

	"github.com/tailscale/tailsql/server/tailsql"
	"tailscale.com/tsweb"
)

// AttachInspector mounts a read-only SQL console over the snapshot under
// /debug/tailsql/ on mux.
func (s *Store) AttachInspector(mux *http.ServeMux) error {
	debug := tsweb.Debugger(mux)
	tsql, err := tailsql.NewServer(tailsql.Options{
		RoutePrefix: "/debug/tailsql/",
	})
	if err != nil {
		return fmt.Errorf("failed to create tailsql server: %w", err)
	}
	tsql.SetDB("sqlite://"+s.path, s.db, &tailsql.DBOptions{
		Label: "Annotation snapshot",
	})

	debug.Handle("tailsql/", "Annotation snapshot SQL console", tsql.NewMux())
	debug.Handle("tables", "Snapshot table row counts", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		for _, t := range Tables {
			var n int
			if err := s.db.QueryRowContext(r.Context(), `SELECT COUNT(*) FROM `+quoteIdent(t)).Scan(&n); err != nil {
				fmt.Fprintf(w, "%s\terror: %v\n", t, err)
				continue
			}
			fmt.Fprintf(w, "%s\t%d\n", t, n)
		}
	}))
	return nil
}
