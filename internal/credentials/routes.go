package credentials

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/promptforge/internal/provider"
)

// RegisterRoutes mounts the provider credential API routes.
func RegisterRoutes(r chi.Router, store *Store) {
	r.Route("/api/providers", func(r chi.Router) {
		r.Get("/", handleStatus(store))
		r.Put("/selected", handleSelect(store))
		r.Put("/{id}/key", handleSetKey(store))
		r.Delete("/{id}/key", handleDeleteKey(store))
	})
}

func handleStatus(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		statuses, err := store.StatusAll(r.Context())
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}
		if statuses == nil {
			statuses = []Status{}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(statuses)
	}
}

type selectRequest struct {
	Provider provider.ID `json:"provider"`
}

func handleSelect(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req selectRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}
		if !provider.Valid(req.Provider) {
			http.Error(w, `{"error":"unknown provider"}`, http.StatusBadRequest)
			return
		}

		if err := store.SelectProvider(r.Context(), req.Provider); err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"selected": string(req.Provider)})
	}
}

type setKeyRequest struct {
	APIKey string `json:"api_key"`
}

func handleSetKey(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := provider.ID(chi.URLParam(r, "id"))
		if !provider.Valid(id) {
			http.Error(w, `{"error":"unknown provider"}`, http.StatusBadRequest)
			return
		}

		var req setKeyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}
		if req.APIKey == "" {
			http.Error(w, `{"error":"api_key is required"}`, http.StatusBadRequest)
			return
		}

		if err := store.SetKey(r.Context(), id, req.APIKey); err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"provider":   string(id),
			"masked_key": MaskKey(req.APIKey),
		})
	}
}

func handleDeleteKey(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := provider.ID(chi.URLParam(r, "id"))
		if !provider.Valid(id) {
			http.Error(w, `{"error":"unknown provider"}`, http.StatusBadRequest)
			return
		}

		if err := store.DeleteKey(r.Context(), id); err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"provider": string(id)})
	}
}
