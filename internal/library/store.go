package library

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ziadkadry99/promptforge/internal/db"
)

// Store manages persistence of prompts and labels.
type Store struct {
	db *db.DB
}

// NewStore creates a library store.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// SavePrompt inserts or updates a prompt keyed by name. Updating replaces
// content and the label set but never touches original_content.
func (s *Store) SavePrompt(ctx context.Context, p Prompt) (*Prompt, error) {
	if strings.TrimSpace(p.Name) == "" {
		return nil, fmt.Errorf("prompt name is required")
	}
	now := time.Now().UTC()

	existing, err := s.GetPrompt(ctx, p.Name)
	if err != nil {
		return nil, err
	}

	if existing == nil {
		p.ID = uuid.New().String()
		p.CreatedAt = now
		p.UpdatedAt = now
		_, err = s.db.ExecContext(ctx,
			`INSERT INTO prompts (id, name, content, original_content, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			p.ID, p.Name, p.Content, p.OriginalContent, p.CreatedAt, p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("inserting prompt: %w", err)
		}
	} else {
		p.ID = existing.ID
		p.CreatedAt = existing.CreatedAt
		p.UpdatedAt = now
		p.OriginalContent = existing.OriginalContent
		_, err = s.db.ExecContext(ctx,
			`UPDATE prompts SET content = ?, updated_at = ? WHERE id = ?`,
			p.Content, p.UpdatedAt, p.ID,
		)
		if err != nil {
			return nil, fmt.Errorf("updating prompt: %w", err)
		}
	}

	if err := s.setPromptLabels(ctx, p.ID, p.Labels); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) setPromptLabels(ctx context.Context, promptID string, labels []string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM prompt_labels WHERE prompt_id = ?`, promptID); err != nil {
		return fmt.Errorf("clearing prompt labels: %w", err)
	}
	for _, name := range labels {
		if name == "" {
			continue
		}
		_, err := s.db.ExecContext(ctx,
			`INSERT OR IGNORE INTO prompt_labels (prompt_id, label_name) VALUES (?, ?)`,
			promptID, name,
		)
		if err != nil {
			return fmt.Errorf("saving prompt label: %w", err)
		}
	}
	return nil
}

// GetPrompt retrieves a prompt by name, or nil when not found.
func (s *Store) GetPrompt(ctx context.Context, name string) (*Prompt, error) {
	var p Prompt
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, content, original_content, created_at, updated_at
		 FROM prompts WHERE name = ?`, name,
	).Scan(&p.ID, &p.Name, &p.Content, &p.OriginalContent, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting prompt: %w", err)
	}

	labels, err := s.promptLabels(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	p.Labels = labels
	return &p, nil
}

func (s *Store) promptLabels(ctx context.Context, promptID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT label_name FROM prompt_labels WHERE prompt_id = ? ORDER BY label_name`, promptID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing prompt labels: %w", err)
	}
	defer rows.Close()

	var labels []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning label: %w", err)
		}
		labels = append(labels, name)
	}
	return labels, rows.Err()
}

// ListPrompts returns all prompts ordered by name.
func (s *Store) ListPrompts(ctx context.Context) ([]Prompt, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, content, original_content, created_at, updated_at
		 FROM prompts ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing prompts: %w", err)
	}
	defer rows.Close()

	var prompts []Prompt
	for rows.Next() {
		var p Prompt
		if err := rows.Scan(&p.ID, &p.Name, &p.Content, &p.OriginalContent, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning prompt: %w", err)
		}
		prompts = append(prompts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range prompts {
		labels, err := s.promptLabels(ctx, prompts[i].ID)
		if err != nil {
			return nil, err
		}
		prompts[i].Labels = labels
	}
	return prompts, nil
}

// DeletePrompt removes a prompt by name.
func (s *Store) DeletePrompt(ctx context.Context, name string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM prompts WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("deleting prompt: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("prompt not found: %s", name)
	}
	return nil
}

// UpdateContent replaces a prompt's content.
func (s *Store) UpdateContent(ctx context.Context, name, content string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE prompts SET content = ?, updated_at = ? WHERE name = ?`,
		content, time.Now().UTC(), name,
	)
	if err != nil {
		return fmt.Errorf("updating content: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("prompt not found: %s", name)
	}
	return nil
}

// ArchiveOriginal records the pre-refinement baseline. It only writes when
// original_content is still empty, so the first archived version wins.
func (s *Store) ArchiveOriginal(ctx context.Context, name, original string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE prompts SET original_content = ?, updated_at = ?
		 WHERE name = ? AND original_content = ''`,
		original, time.Now().UTC(), name,
	)
	if err != nil {
		return fmt.Errorf("archiving original content: %w", err)
	}
	return nil
}

// SaveLabel inserts or updates a label keyed by name.
func (s *Store) SaveLabel(ctx context.Context, l Label) (*Label, error) {
	if strings.TrimSpace(l.Name) == "" {
		return nil, fmt.Errorf("label name is required")
	}
	now := time.Now().UTC()

	existing, err := s.GetLabel(ctx, l.Name)
	if err != nil {
		return nil, err
	}

	if existing == nil {
		l.ID = uuid.New().String()
		l.CreatedAt = now
		l.UpdatedAt = now
		_, err = s.db.ExecContext(ctx,
			`INSERT INTO labels (id, name, context, icon, color, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			l.ID, l.Name, l.Context, l.Icon, l.Color, l.CreatedAt, l.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("inserting label: %w", err)
		}
	} else {
		l.ID = existing.ID
		l.CreatedAt = existing.CreatedAt
		l.UpdatedAt = now
		_, err = s.db.ExecContext(ctx,
			`UPDATE labels SET context = ?, icon = ?, color = ?, updated_at = ? WHERE id = ?`,
			l.Context, l.Icon, l.Color, l.UpdatedAt, l.ID,
		)
		if err != nil {
			return nil, fmt.Errorf("updating label: %w", err)
		}
	}
	return &l, nil
}

// GetLabel retrieves a label by name, or nil when not found.
func (s *Store) GetLabel(ctx context.Context, name string) (*Label, error) {
	var l Label
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, context, icon, color, created_at, updated_at
		 FROM labels WHERE name = ?`, name,
	).Scan(&l.ID, &l.Name, &l.Context, &l.Icon, &l.Color, &l.CreatedAt, &l.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting label: %w", err)
	}
	return &l, nil
}

// ListLabels returns all labels ordered by name.
func (s *Store) ListLabels(ctx context.Context) ([]Label, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, context, icon, color, created_at, updated_at
		 FROM labels ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing labels: %w", err)
	}
	defer rows.Close()

	var labels []Label
	for rows.Next() {
		var l Label
		if err := rows.Scan(&l.ID, &l.Name, &l.Context, &l.Icon, &l.Color, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning label: %w", err)
		}
		labels = append(labels, l)
	}
	return labels, rows.Err()
}

// RenameLabel renames a label and updates every prompt referencing the old
// name. Prompts not referencing it are untouched.
func (s *Store) RenameLabel(ctx context.Context, oldName, newName string) error {
	if strings.TrimSpace(newName) == "" {
		return fmt.Errorf("new label name is required")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE labels SET name = ?, updated_at = ? WHERE name = ?`,
		newName, time.Now().UTC(), oldName,
	)
	if err != nil {
		return fmt.Errorf("renaming label: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("label not found: %s", oldName)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE prompt_labels SET label_name = ? WHERE label_name = ?`,
		newName, oldName,
	); err != nil {
		return fmt.Errorf("updating prompt references: %w", err)
	}

	return tx.Commit()
}

// DeleteLabel removes a label and strips it from every referencing
// prompt's label set without deleting the prompts.
func (s *Store) DeleteLabel(ctx context.Context, name string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `DELETE FROM labels WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("deleting label: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("label not found: %s", name)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM prompt_labels WHERE label_name = ?`, name); err != nil {
		return fmt.Errorf("removing prompt references: %w", err)
	}

	return tx.Commit()
}

// ContextFor builds the refinement context for a prompt: each referenced
// label's context as a name-prefixed block, blocks separated by blank
// lines. The hint is the first label name, used only as phrasing context.
func (s *Store) ContextFor(ctx context.Context, p *Prompt) (contextText, labelHint string, err error) {
	var blocks []string
	for _, name := range p.Labels {
		label, err := s.GetLabel(ctx, name)
		if err != nil {
			return "", "", err
		}
		if label == nil || strings.TrimSpace(label.Context) == "" {
			continue
		}
		blocks = append(blocks, fmt.Sprintf("%s: %s", label.Name, label.Context))
	}
	if len(p.Labels) > 0 {
		labelHint = p.Labels[0]
	}
	return strings.Join(blocks, "\n\n"), labelHint, nil
}
