package library

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes mounts the prompt and label CRUD API routes.
func RegisterRoutes(r chi.Router, store *Store) {
	r.Route("/api/prompts", func(r chi.Router) {
		r.Get("/", handleListPrompts(store))
		r.Post("/", handleSavePrompt(store))
		r.Get("/{name}", handleGetPrompt(store))
		r.Delete("/{name}", handleDeletePrompt(store))
	})
	r.Route("/api/labels", func(r chi.Router) {
		r.Get("/", handleListLabels(store))
		r.Post("/", handleSaveLabel(store))
		r.Post("/{name}/rename", handleRenameLabel(store))
		r.Delete("/{name}", handleDeleteLabel(store))
	})
}

func handleListPrompts(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		prompts, err := store.ListPrompts(r.Context())
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}
		if prompts == nil {
			prompts = []Prompt{}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(prompts)
	}
}

func handleSavePrompt(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p Prompt
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}
		if p.Name == "" {
			http.Error(w, `{"error":"name is required"}`, http.StatusBadRequest)
			return
		}

		saved, err := store.SavePrompt(r.Context(), p)
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(saved)
	}
}

func handleGetPrompt(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")
		p, err := store.GetPrompt(r.Context(), name)
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}
		if p == nil {
			http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(p)
	}
}

func handleDeletePrompt(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")
		if err := store.DeletePrompt(r.Context(), name); err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"deleted": name})
	}
}

func handleListLabels(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		labels, err := store.ListLabels(r.Context())
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}
		if labels == nil {
			labels = []Label{}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(labels)
	}
}

func handleSaveLabel(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var l Label
		if err := json.NewDecoder(r.Body).Decode(&l); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}
		if l.Name == "" {
			http.Error(w, `{"error":"name is required"}`, http.StatusBadRequest)
			return
		}

		saved, err := store.SaveLabel(r.Context(), l)
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(saved)
	}
}

type renameRequest struct {
	NewName string `json:"new_name"`
}

func handleRenameLabel(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")
		var req renameRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}
		if req.NewName == "" {
			http.Error(w, `{"error":"new_name is required"}`, http.StatusBadRequest)
			return
		}

		if err := store.RenameLabel(r.Context(), name, req.NewName); err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"renamed": req.NewName})
	}
}

func handleDeleteLabel(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")
		if err := store.DeleteLabel(r.Context(), name); err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"deleted": name})
	}
}
