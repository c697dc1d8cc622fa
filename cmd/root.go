package cmd

import (
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "promptforge",
	Short: "Prompt refinement with clarifying questions, backed by your LLM provider",
	Long: `Promptforge keeps a local library of prompts and refines them through a
clarification dialogue: it asks the model what information is missing,
collects your answers, and synthesizes an improved prompt. Works with
OpenAI, Anthropic, and Google as interchangeable providers.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".promptforge.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
