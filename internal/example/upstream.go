// Package example implements a small upstream application used by tests and
// examples as the "normal response pipeline" faults get injected into.
package example

import (
	"fmt"
	"net/http"
)

// Upstream serves a plain body on every path, and a flushed, chunked body
// under /stream.
func Upstream() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "hello from %s", r.URL.Path)
	})

	mux.HandleFunc("/stream", func(w http.ResponseWriter, r *http.Request) {
		flusher, _ := w.(http.Flusher)

		for i := range 3 {
			fmt.Fprintf(w, "chunk-%d", i)

			if flusher != nil {
				flusher.Flush()
			}
		}
	})

	return mux
}
