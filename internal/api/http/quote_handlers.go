package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/prepgrid/prepgrid/internal/quote"
)

// GET /quotes/random
func RandomQuoteHandler(store quote.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, err := store.Random(r.Context())
		if errors.Is(err, quote.ErrNotFound) {
			http.Error(w, "no quotes", 404)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		_ = json.NewEncoder(w).Encode(q)
	}
}

// POST /quotes (admin)
func CreateQuoteHandler(store quote.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var q quote.Quote
		if err := json.NewDecoder(r.Body).Decode(&q); err != nil || q.Text == "" {
			http.Error(w, "text required", 400)
			return
		}
		out, err := store.Put(r.Context(), q)
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(out)
	}
}

// DELETE /quotes/{quoteID} (admin)
func DeleteQuoteHandler(store quote.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.Delete(r.Context(), chi.URLParam(r, "quoteID")); err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
