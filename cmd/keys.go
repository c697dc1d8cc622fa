package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/promptforge/internal/provider"
)

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage API keys for LLM providers",
	Long: `Store and manage API keys for the supported LLM providers.

Keys are stored in the local promptforge database. One provider is
selected as active; refinement uses the selected provider's key.`,
}

var keysSetCmd = &cobra.Command{
	Use:   "set <provider>",
	Short: "Store an API key for a provider",
	Args:  cobra.ExactArgs(1),
	RunE:  runKeysSet,
}

var keysDeleteCmd = &cobra.Command{
	Use:   "delete <provider>",
	Short: "Remove a provider's stored API key",
	Args:  cobra.ExactArgs(1),
	RunE:  runKeysDelete,
}

var keysSelectCmd = &cobra.Command{
	Use:   "select [provider]",
	Short: "Choose the active provider for refinement",
	Long: `Choose which provider refinement calls go to.

With no argument an interactive picker is shown.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runKeysSelect,
}

var keysListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show every provider's key status",
	RunE:  runKeysList,
}

func init() {
	rootCmd.AddCommand(keysCmd)
	keysCmd.AddCommand(keysSetCmd)
	keysCmd.AddCommand(keysDeleteCmd)
	keysCmd.AddCommand(keysSelectCmd)
	keysCmd.AddCommand(keysListCmd)
}

func parseProviderArg(arg string) (provider.ID, error) {
	id := provider.ID(strings.ToLower(arg))
	if !provider.Valid(id) {
		return "", fmt.Errorf("unknown provider %q (valid: openai, anthropic, google)", arg)
	}
	return id, nil
}

func runKeysSet(cmd *cobra.Command, args []string) error {
	id, err := parseProviderArg(args[0])
	if err != nil {
		return err
	}

	keyPrompt := promptui.Prompt{
		Label: fmt.Sprintf("%s API key", provider.Lookup(id).Name),
		Mask:  '*',
		Validate: func(input string) error {
			if strings.TrimSpace(input) == "" {
				return fmt.Errorf("API key is required")
			}
			return nil
		},
	}
	key, err := keyPrompt.Run()
	if err != nil {
		return fmt.Errorf("reading key: %w", err)
	}

	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	ctx := context.Background()
	if err := app.creds.SetKey(ctx, id, strings.TrimSpace(key)); err != nil {
		return fmt.Errorf("storing key: %w", err)
	}

	// Select automatically when no provider is active yet.
	if _, ok, err := app.creds.Selected(ctx); err == nil && !ok {
		if err := app.creds.SelectProvider(ctx, id); err != nil {
			return fmt.Errorf("selecting provider: %w", err)
		}
		fmt.Printf("Stored %s key and selected it as the active provider.\n", id)
		return nil
	}

	fmt.Printf("Stored %s key.\n", id)
	return nil
}

func runKeysDelete(cmd *cobra.Command, args []string) error {
	id, err := parseProviderArg(args[0])
	if err != nil {
		return err
	}

	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.creds.DeleteKey(context.Background(), id); err != nil {
		return fmt.Errorf("deleting key: %w", err)
	}
	fmt.Printf("Removed %s key.\n", id)
	return nil
}

func runKeysSelect(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	var id provider.ID
	if len(args) == 1 {
		id, err = parseProviderArg(args[0])
		if err != nil {
			return err
		}
	} else {
		items := make([]string, 0, 3)
		for _, cfg := range provider.All() {
			items = append(items, string(cfg.ID))
		}
		selectPrompt := promptui.Select{
			Label: "Select active provider",
			Items: items,
		}
		_, chosen, err := selectPrompt.Run()
		if err != nil {
			return fmt.Errorf("provider selection: %w", err)
		}
		id = provider.ID(chosen)
	}

	if err := app.creds.SelectProvider(context.Background(), id); err != nil {
		return fmt.Errorf("selecting provider: %w", err)
	}
	fmt.Printf("Active provider: %s\n", id)
	return nil
}

func runKeysList(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	statuses, err := app.creds.StatusAll(context.Background())
	if err != nil {
		return fmt.Errorf("listing providers: %w", err)
	}

	fmt.Println("Provider     Key             Active")
	fmt.Println("--------     ---             ------")
	for _, st := range statuses {
		key := "not configured"
		if st.Configured {
			key = st.MaskedKey
		}
		active := ""
		if st.Selected {
			active = "yes"
		}
		fmt.Printf("%-12s %-15s %s\n", st.ID, key, active)
	}
	return nil
}
