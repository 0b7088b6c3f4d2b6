package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tagsync/internal/core/tags"
	"tagsync/internal/shared"
)

// NewCoverCommand creates the artwork command group
func NewCoverCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cover",
		Short: "Inspect, embed, extract or remove cover art.",
	}

	cmd.AddCommand(newCoverShowCommand())
	cmd.AddCommand(newCoverExtractCommand())
	cmd.AddCommand(newCoverEmbedCommand())
	cmd.AddCommand(newCoverRemoveCommand())

	return cmd
}

func newCoverShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show [file]",
		Short: "Report the embedded cover of an audio file.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, container, _ := initConfigAndServices(cmd)
			if !shared.FileExists(args[0]) {
				return fmt.Errorf("%s: %w", args[0], shared.ErrNotFound)
			}
			art, err := container.Store.ExtractCover(args[0])
			if err != nil {
				if errors.Is(err, shared.ErrNotFound) {
					shared.ColorWarning.Println("No embedded cover.")
					return nil
				}
				return fmt.Errorf("extract cover from %s: %w", args[0], err)
			}
			shared.ColorInfo.Printf("🖼 %s, %d bytes\n", art.MIME, len(art.Data))
			return nil
		},
	}
}

func newCoverExtractCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "extract [file] [output]",
		Short: "Write the embedded cover to an image file.",
		Long: `Write the embedded cover of an audio file to an image file.

Without an output argument the cover is written to the current directory,
named after the file's album tag ("<album> cover.jpg" or .png), or plain
cover.jpg when there is no album tag.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, container, _ := initConfigAndServices(cmd)
			art, err := container.Store.ExtractCover(args[0])
			if err != nil {
				return fmt.Errorf("extract cover from %s: %w", args[0], err)
			}

			output := defaultCoverName(container.Store, args[0]) + extensionForMIME(art.MIME)
			if len(args) == 2 {
				output = args[1]
			}
			if err := os.WriteFile(output, art.Data, 0644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			shared.ColorSuccess.Printf("✅ Cover written to %s (%s, %d bytes)\n", output, art.MIME, len(art.Data))
			return nil
		},
	}
}

func newCoverEmbedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "embed [file] [image]",
		Short: "Embed an image file as the only cover of an audio file.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, container, hooks := initConfigAndServices(cmd)

			data, err := os.ReadFile(args[1])
			if err != nil {
				return fmt.Errorf("read image %s: %w", args[1], err)
			}

			lock, err := acquireLibraryLock()
			if err != nil {
				return err
			}
			defer lock.Unlock()

			if err := container.Store.WriteCover(args[0], &tags.Artwork{Data: data}); err != nil {
				return fmt.Errorf("embed cover into %s: %w", args[0], err)
			}
			hooks.changes.NotifyChanged(args[0])
			shared.ColorSuccess.Printf("✅ Embedded %s into %s\n", args[1], args[0])
			return nil
		},
	}
}

func newCoverRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove [file]",
		Short: "Remove all embedded covers from an audio file.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, container, hooks := initConfigAndServices(cmd)

			lock, err := acquireLibraryLock()
			if err != nil {
				return err
			}
			defer lock.Unlock()

			if err := container.Store.WriteCover(args[0], nil); err != nil {
				return fmt.Errorf("remove cover from %s: %w", args[0], err)
			}
			hooks.changes.NotifyChanged(args[0])
			shared.ColorSuccess.Printf("✅ Removed embedded cover from %s\n", args[0])
			return nil
		},
	}
}

// defaultCoverName derives the extract target from the file's album tag so
// covers from different albums do not overwrite each other.
func defaultCoverName(store *tags.Store, path string) string {
	rec, err := store.ReadTags(path)
	if err != nil || rec.Album == "" {
		return "cover"
	}
	return shared.SanitizeFileName(rec.Album) + " cover"
}

// extensionForMIME maps a cover MIME type to a file extension, defaulting
// to .jpg for anything unrecognized.
func extensionForMIME(mime string) string {
	if mime == tags.MIMEPNG {
		return ".png"
	}
	return ".jpg"
}
