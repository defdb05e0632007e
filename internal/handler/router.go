package handler

import (
	"net/http"

	"github.com/gorilla/mux"
)

// NewRouter registers the API routes behind the given middleware
func NewRouter(h *Handler, mws ...mux.MiddlewareFunc) *mux.Router {
	r := mux.NewRouter()
	r.Use(mws...)
	r.HandleFunc("/", h.Home).Methods(http.MethodGet)
	r.HandleFunc("/analyze", h.Analyze).Methods(http.MethodPost)
	r.HandleFunc("/predict", h.Predict).Methods(http.MethodPost)
	return r
}
