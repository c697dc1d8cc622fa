package refine

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/promptforge/internal/library"
	"github.com/ziadkadry99/promptforge/internal/llm"
)

// RegisterRoutes mounts the refinement API routes.
func RegisterRoutes(r chi.Router, engine *Engine, lib *library.Store) {
	r.Route("/api/refine", func(r chi.Router) {
		r.Post("/questions", handleQuestions(engine))
		r.Post("/final", handleFinal(engine))
		r.Post("/prompt/{name}", handleRefinePrompt(engine, lib))
	})
}

type questionsRequest struct {
	PromptContent string `json:"promptContent"`
	LabelContext  string `json:"labelContext"`
	Label         string `json:"label"`
}

type questionsResponse struct {
	Success         bool     `json:"success"`
	Questions       []string `json:"questions"`
	Missing         []string `json:"missing"`
	ImportanceScore int      `json:"importanceScore"`
}

func handleQuestions(engine *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req questionsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_input", "invalid request body")
			return
		}

		result, err := engine.GenerateClarifyingQuestions(r.Context(), req.PromptContent, req.LabelContext, req.Label)
		if err != nil {
			writeRefineError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, questionsResponse{
			Success:         true,
			Questions:       emptyIfNil(result.Questions),
			Missing:         emptyIfNil(result.Missing),
			ImportanceScore: result.ImportanceScore,
		})
	}
}

type finalRequest struct {
	PromptContent       string        `json:"promptContent"`
	LabelContext        string        `json:"labelContext"`
	Label               string        `json:"label"`
	ConversationHistory []llm.Message `json:"conversationHistory"`
}

type finalResponse struct {
	Success     bool   `json:"success"`
	RefinedText string `json:"refinedText"`
}

func handleFinal(engine *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req finalRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_input", "invalid request body")
			return
		}

		refined, err := engine.GenerateFinalRefinedPrompt(r.Context(), req.PromptContent, req.LabelContext, req.Label, req.ConversationHistory)
		if err != nil {
			writeRefineError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, finalResponse{Success: true, RefinedText: refined})
	}
}

type refinePromptResponse struct {
	Success            bool     `json:"success"`
	RefinedText        string   `json:"refinedText,omitempty"`
	NeedsClarification bool     `json:"needsClarification,omitempty"`
	Questions          []string `json:"questions,omitempty"`
	Missing            []string `json:"missing,omitempty"`
	ImportanceScore    int      `json:"importanceScore,omitempty"`
}

// handleRefinePrompt is the convenience action: it resolves a stored
// prompt's label context, runs Operation A, and when no clarification is
// needed runs Operation B directly and saves the result. The prior content
// is archived as original_content before the first overwrite.
func handleRefinePrompt(engine *Engine, lib *library.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")

		p, err := lib.GetPrompt(r.Context(), name)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "storage", err.Error())
			return
		}
		if p == nil {
			writeError(w, http.StatusNotFound, "not_found", "prompt not found: "+name)
			return
		}

		contextText, labelHint, err := lib.ContextFor(r.Context(), p)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "storage", err.Error())
			return
		}

		result, err := engine.GenerateClarifyingQuestions(r.Context(), p.Content, contextText, labelHint)
		if err != nil {
			writeRefineError(w, err)
			return
		}

		if len(result.Questions) > 0 {
			writeJSON(w, http.StatusOK, refinePromptResponse{
				Success:            true,
				NeedsClarification: true,
				Questions:          result.Questions,
				Missing:            emptyIfNil(result.Missing),
				ImportanceScore:    result.ImportanceScore,
			})
			return
		}

		refined, err := engine.GenerateFinalRefinedPrompt(r.Context(), p.Content, contextText, labelHint, nil)
		if err != nil {
			writeRefineError(w, err)
			return
		}

		if refined != p.Content {
			if err := SaveRefined(r.Context(), lib, p.Name, p.Content, refined); err != nil {
				writeError(w, http.StatusInternalServerError, "storage", err.Error())
				return
			}
		}

		writeJSON(w, http.StatusOK, refinePromptResponse{Success: true, RefinedText: refined})
	}
}

// SaveRefined archives the pre-refinement baseline (first refinement only;
// the store ignores later archives) and stores the refined content.
func SaveRefined(ctx context.Context, lib *library.Store, name, prior, refined string) error {
	if err := lib.ArchiveOriginal(ctx, name, prior); err != nil {
		return err
	}
	return lib.UpdateContent(ctx, name, refined)
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Kind    string `json:"kind"`
}

// writeRefineError maps the refinement error taxonomy onto HTTP statuses
// and machine-readable kinds. "not_configured" gets its own kind so the UI
// can route the user to provider setup instead of a generic alert.
func writeRefineError(w http.ResponseWriter, err error) {
	var authErr *llm.AuthError
	switch {
	case errors.Is(err, ErrEmptyPrompt), errors.Is(err, ErrBadTranscript):
		writeError(w, http.StatusBadRequest, "invalid_input", err.Error())
	case NotConfigured(err):
		writeError(w, http.StatusConflict, "not_configured", "no provider configured: add an API key and select a provider")
	case errors.As(err, &authErr):
		writeError(w, http.StatusUnauthorized, "auth", err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, "timeout", "model call timed out")
	case errors.Is(err, ErrEmptyRefinement), errors.Is(err, llm.ErrEmptyResponse):
		writeError(w, http.StatusBadGateway, "empty_response", err.Error())
	default:
		writeError(w, http.StatusBadGateway, "provider", err.Error())
	}
}

func writeError(w http.ResponseWriter, status int, kind, message string) {
	writeJSON(w, status, errorResponse{Success: false, Error: message, Kind: kind})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
