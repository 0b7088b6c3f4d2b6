package commands

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"tagsync/internal/config"
	"tagsync/internal/shared"
)

// NewConfigCommand creates the configuration command group
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or initialize the configuration.",
	}
	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigInitCommand())
	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			configFile, cfg := resolveConfig(cmd)
			data, err := json.MarshalIndent(cfg, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}
			shared.ColorInfo.Printf("Configuration from %s:\n", configFile)
			fmt.Println(string(data))
			return nil
		},
	}
}

func newConfigInitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create or update the configuration file interactively.",
		Long: `Create or update the configuration file.

Existing settings become the prompt defaults, so rerunning init only
changes what you type. With --no-input the current (or default)
settings are written without prompting.`,
		Args: cobra.NoArgs,
		RunE: runConfigInitCommand,
	}
}

func runConfigInitCommand(cmd *cobra.Command, args []string) error {
	noInput, _ := cmd.Flags().GetBool("no-input")
	configFile, cfg := resolveConfig(cmd)

	if !noInput {
		shared.ColorInfo.Println("✨ Welcome to tagsync! Let's set up your configuration.")

		cfg.Contact = shared.GetUserInput("Enter a contact address sent to the catalog (an email or URL)", cfg.Contact)
		cfg.ServiceURL = shared.GetUserInput(fmt.Sprintf("Enter the metadata service URL (e.g., %s)", config.DefaultServiceURL), cfg.ServiceURL)
		cfg.CoverURL = shared.GetUserInput(fmt.Sprintf("Enter the cover archive URL (e.g., %s)", config.DefaultCoverURL), cfg.CoverURL)

		defaultParallelism := strconv.Itoa(cfg.Parallelism)
		parallelismStr := shared.GetUserInput(fmt.Sprintf("Enter number of parallel tag writes (default: %s)", defaultParallelism), defaultParallelism)
		if p, err := strconv.Atoi(parallelismStr); err == nil && p > 0 {
			cfg.Parallelism = p
		} else {
			shared.ColorWarning.Printf("⚠️ Invalid parallelism value '%s', using default %d.\n", parallelismStr, cfg.Parallelism)
		}

		cfg.MirrorAttributes = shared.GetYesNoInput("Mirror written tags to extended file attributes?", "y")
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration invalid: %w", err)
	}
	if err := config.SaveConfig(configFile, cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	shared.ColorSuccess.Printf("✅ Configuration saved to %s\n", configFile)
	return nil
}
