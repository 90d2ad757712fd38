package ical

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func Routes(path string) http.Handler {
	h := handler{path: path, version: "(devel)"}

	r := chi.NewRouter()
	r.Get("/calendar.ics", h.serveCalendar)
	r.Get("/{calendar}/calendar.ics", h.serveCalendar)
	r.Get("/preview", h.servePreview)
	r.Get("/{calendar}/preview", h.servePreview)
	return r
}
