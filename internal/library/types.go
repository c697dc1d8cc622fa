package library

import "time"

// Prompt is a user-authored prompt in the library, identified by its
// unique name.
type Prompt struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Content string   `json:"content"`
	Labels  []string `json:"labels"`
	// OriginalContent preserves the pre-refinement baseline. Once set it is
	// never overwritten by a later refinement.
	OriginalContent string    `json:"original_content,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Label is a named category whose free-text context is injected as
// grounding during refinement. Icon and color are presentation only.
type Label struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Context   string    `json:"context"`
	Icon      string    `json:"icon"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
