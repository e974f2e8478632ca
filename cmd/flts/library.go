package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/tsultanov/flts/internal/library"
)

var libraryRootFlag string

var libraryCmd = &cobra.Command{
	Use:   "library",
	Short: "Manage the local library",
}

var libraryInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Create a library directory",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := libraryRootFlag
		if len(args) == 1 {
			root = args[0]
		}
		path, err := resolveLibraryRoot(root)
		if err != nil {
			return err
		}
		if _, err := library.Open(path); err != nil {
			return err
		}
		fmt.Printf("Initialized library at %s\n", path)
		return nil
	},
}

var libraryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List books and dictionaries in the library",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveLibraryRoot(libraryRootFlag)
		if err != nil {
			return err
		}
		lib, err := library.Open(path)
		if err != nil {
			return err
		}

		books, err := lib.ListBooks()
		if err != nil {
			return fmt.Errorf("list books: %w", err)
		}
		fmt.Printf("Books (%d):\n", len(books))
		for _, b := range books {
			fmt.Printf("  %s  %-40s chapters=%d paragraphs=%d", b.ID, b.Title, b.ChaptersCount, b.ParagraphsCount)
			if len(b.ConflictPaths) > 0 {
				fmt.Printf("  conflicts=%d", len(b.ConflictPaths))
			}
			fmt.Println()
		}

		dicts, err := lib.ListDictionaries()
		if err != nil {
			return fmt.Errorf("list dictionaries: %w", err)
		}
		fmt.Printf("Dictionaries (%d):\n", len(dicts))
		for _, d := range dicts {
			fmt.Printf("  %s -> %s  words=%d", d.Dictionary.SourceLanguage, d.Dictionary.TargetLanguage, len(d.Dictionary.Words()))
			if len(d.ConflictPaths) > 0 {
				fmt.Printf("  conflicts=%d", len(d.ConflictPaths))
			}
			fmt.Println()
		}
		return nil
	},
}

var libraryWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the library for changes made by other processes",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveLibraryRoot(libraryRootFlag)
		if err != nil {
			return err
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		debounce := library.DefaultDebounce
		if cfg.Watch.DebounceMillis > 0 {
			debounce = durationFromMillis(cfg.Watch.DebounceMillis)
		}

		w, err := library.NewWatcher(path, debounce)
		if err != nil {
			return fmt.Errorf("watch: %w", err)
		}
		defer w.Close()

		slog.Info("watching library", slog.String("root", path))
		ctx := cmd.Context()
		for {
			select {
			case <-ctx.Done():
				return nil
			case change := <-w.Events():
				switch change.Kind {
				case library.BookChanged:
					slog.Info("book changed", slog.String("book_id", change.BookID.String()))
				case library.DictionaryChanged:
					slog.Info("dictionary changed",
						slog.String("source", change.Source.String()),
						slog.String("target", change.Target.String()))
				}
			case err := <-w.Errors():
				slog.Error("watch error", slog.Any("error", err))
			}
		}
	},
}

func init() {
	libraryCmd.PersistentFlags().StringVar(&libraryRootFlag, "root", "", "library root directory (overrides config)")
	libraryCmd.AddCommand(libraryInitCmd)
	libraryCmd.AddCommand(libraryListCmd)
	libraryCmd.AddCommand(libraryWatchCmd)
}
