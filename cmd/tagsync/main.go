package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tagsync/cmd/tagsync/commands"
	"tagsync/internal/shared"
)

const toolVersion = "0.1.0"

var rootCmd = &cobra.Command{
	Use:     "tagsync",
	Version: toolVersion,
	Short:   "A tag editor and catalog reconciler for local audio libraries.",
	Long: fmt.Sprintf(`tagsync (v%s)

A command line tag editor and catalog reconciler for local audio files.
It allows you to:
- Inspect and edit tags across .mp3, .flac, .m4a, .mp4 and .aac files.
- Embed, extract and remove cover art.
- Match files against a MusicBrainz-compatible catalog and apply the result.

Tag writes go through one canonical record for all three tag dialects, and
can be mirrored to extended file attributes for indexers that read them.`, toolVersion),
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to the configuration file")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().Bool("no-input", false, "Never prompt; pick defaults and fail where a choice is required")

	rootCmd.AddCommand(commands.NewShowCommand())
	rootCmd.AddCommand(commands.NewSetCommand())
	rootCmd.AddCommand(commands.NewCoverCommand())
	rootCmd.AddCommand(commands.NewSearchCommand())
	rootCmd.AddCommand(commands.NewMatchCommand())
	rootCmd.AddCommand(commands.NewConfigCommand())
	rootCmd.AddCommand(commands.NewVersionCommand(toolVersion))
}

func main() {
	shared.InitializeColors()
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
