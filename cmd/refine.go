package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/promptforge/internal/progress"
	"github.com/ziadkadry99/promptforge/internal/refine"
)

var refineText string

var refineCmd = &cobra.Command{
	Use:   "refine [name]",
	Short: "Refine a prompt through a clarification dialogue",
	Long: `Refines a prompt: the model assesses it, asks up to three clarifying
questions, and synthesizes an improved version from your answers.

With a name argument the stored prompt is refined and the result saved
back (the pre-refinement version is kept). With --text a one-off prompt
is refined and printed without touching the library.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRefine,
}

func init() {
	refineCmd.Flags().StringVarP(&refineText, "text", "t", "", "refine this text instead of a stored prompt")
	rootCmd.AddCommand(refineCmd)
}

func runRefine(cmd *cobra.Command, args []string) error {
	if (len(args) == 0) == (refineText == "") {
		return fmt.Errorf("provide either a prompt name or --text")
	}

	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	ctx := context.Background()

	promptText := refineText
	contextText := ""
	labelHint := ""
	name := ""
	if len(args) == 1 {
		name = args[0]
		p, err := app.library.GetPrompt(ctx, name)
		if err != nil {
			return fmt.Errorf("getting prompt: %w", err)
		}
		if p == nil {
			return fmt.Errorf("no prompt named %q", name)
		}
		promptText = p.Content
		contextText, labelHint, err = app.library.ContextFor(ctx, p)
		if err != nil {
			return fmt.Errorf("resolving label context: %w", err)
		}
	}

	session := refine.NewSession(app.engine, promptText, contextText, labelHint)
	reporter := progress.NewReporter()

	reporter.Start("Assessing prompt...")
	step, err := session.Start(ctx)
	reporter.Stop()
	if err != nil {
		return refineCommandError(err)
	}

	for !step.Done {
		if step.Index == 0 && step.Clarification != nil {
			fmt.Fprintf(os.Stderr, "The prompt needs clarification (importance %d/5). Enter to skip a question, Ctrl+C to cancel.\n\n",
				step.Clarification.ImportanceScore)
		}

		answerPrompt := promptui.Prompt{
			Label: fmt.Sprintf("[%d/%d] %s", step.Index+1, step.Total, step.Question),
		}
		answer, err := answerPrompt.Run()
		if err != nil {
			// Ctrl+C abandons the dialogue without synthesizing.
			if session.Cancel() == refine.ReturnToEditor {
				fmt.Fprintln(os.Stderr, "Cancelled; prompt left unchanged.")
			}
			return nil
		}

		advance := func() (*refine.Step, error) {
			if strings.TrimSpace(answer) == "" {
				return session.Defer(ctx)
			}
			return session.Answer(ctx, answer)
		}

		if isLastQuestion(step) {
			reporter.Start("Synthesizing refined prompt...")
		}
		step, err = advance()
		reporter.Stop()
		if err != nil {
			return refineCommandError(err)
		}
	}

	if name != "" {
		if step.RefinedText != promptText {
			if err := refine.SaveRefined(ctx, app.library, name, promptText, step.RefinedText); err != nil {
				return fmt.Errorf("saving refined prompt: %w", err)
			}
		}
		fmt.Fprintf(os.Stderr, "Refined and saved %q:\n\n", name)
	}
	fmt.Println(step.RefinedText)
	return nil
}

func isLastQuestion(step *refine.Step) bool {
	return step.Index == step.Total-1
}

// refineCommandError rewrites the common failure modes into actionable
// CLI messages.
func refineCommandError(err error) error {
	switch {
	case refine.NotConfigured(err):
		return fmt.Errorf("no provider configured: run `promptforge keys set <provider>` first")
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("model call timed out; try again or raise model_timeout in %s", cfgFile)
	default:
		return err
	}
}
