package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/promptforge/internal/library"
)

var promptLabels []string

var promptsCmd = &cobra.Command{
	Use:   "prompts",
	Short: "Manage the prompt library",
}

var promptsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all saved prompts",
	RunE:  runPromptsList,
}

var promptsShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Print a prompt's content",
	Args:  cobra.ExactArgs(1),
	RunE:  runPromptsShow,
}

var promptsSaveCmd = &cobra.Command{
	Use:   "save <name> <content>",
	Short: "Save a prompt under a name",
	Long: `Save a prompt under a name. Saving to an existing name replaces its
content and label set but keeps the archived original.`,
	Args: cobra.ExactArgs(2),
	RunE: runPromptsSave,
}

var promptsDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a prompt",
	Args:  cobra.ExactArgs(1),
	RunE:  runPromptsDelete,
}

func init() {
	promptsSaveCmd.Flags().StringSliceVarP(&promptLabels, "label", "l", nil, "label to attach (repeatable)")
	rootCmd.AddCommand(promptsCmd)
	promptsCmd.AddCommand(promptsListCmd)
	promptsCmd.AddCommand(promptsShowCmd)
	promptsCmd.AddCommand(promptsSaveCmd)
	promptsCmd.AddCommand(promptsDeleteCmd)
}

func runPromptsList(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	prompts, err := app.library.ListPrompts(context.Background())
	if err != nil {
		return fmt.Errorf("listing prompts: %w", err)
	}
	if len(prompts) == 0 {
		fmt.Println("No prompts saved. Use `promptforge prompts save <name> <content>`.")
		return nil
	}

	for _, p := range prompts {
		line := p.Name
		if len(p.Labels) > 0 {
			line += fmt.Sprintf("  [%s]", strings.Join(p.Labels, ", "))
		}
		if p.OriginalContent != "" {
			line += "  (refined)"
		}
		fmt.Println(line)
	}
	return nil
}

func runPromptsShow(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	p, err := app.library.GetPrompt(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("getting prompt: %w", err)
	}
	if p == nil {
		return fmt.Errorf("no prompt named %q", args[0])
	}

	fmt.Println(p.Content)
	if p.OriginalContent != "" && p.OriginalContent != p.Content {
		fmt.Println("\n--- Original (before refinement) ---")
		fmt.Println(p.OriginalContent)
	}
	return nil
}

func runPromptsSave(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	ctx := context.Background()
	for _, name := range promptLabels {
		existing, err := app.library.GetLabel(ctx, name)
		if err != nil {
			return fmt.Errorf("checking label %q: %w", name, err)
		}
		if existing == nil {
			if _, err := app.library.SaveLabel(ctx, library.Label{Name: name}); err != nil {
				return fmt.Errorf("saving label %q: %w", name, err)
			}
		}
	}

	if _, err := app.library.SavePrompt(ctx, library.Prompt{
		Name:    args[0],
		Content: args[1],
		Labels:  promptLabels,
	}); err != nil {
		return fmt.Errorf("saving prompt: %w", err)
	}
	fmt.Printf("Saved prompt %q.\n", args[0])
	return nil
}

func runPromptsDelete(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.library.DeletePrompt(context.Background(), args[0]); err != nil {
		return err
	}
	fmt.Printf("Deleted prompt %q.\n", args[0])
	return nil
}
