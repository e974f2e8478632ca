package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"github.com/tsultanov/flts/internal/config"
	"github.com/tsultanov/flts/internal/epubexport"
	"github.com/tsultanov/flts/internal/epubimport"
	"github.com/tsultanov/flts/internal/library"
	"github.com/tsultanov/flts/internal/translator"
)

var (
	bookRootFlag        string
	bookExportTranslate string
)

var bookCmd = &cobra.Command{
	Use:   "book",
	Short: "Import, export, and translate books",
}

var bookImportCmd = &cobra.Command{
	Use:   "import <epub-path>",
	Short: "Import an EPUB as a new book",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := resolveLibraryRoot(bookRootFlag)
		if err != nil {
			return err
		}
		lib, err := library.Open(root)
		if err != nil {
			return err
		}

		b, err := epubimport.LoadBook(args[0])
		if err != nil {
			return fmt.Errorf("import: %w", err)
		}

		lb, err := lib.CreateBook(b.Title)
		if err != nil {
			return fmt.Errorf("create book: %w", err)
		}
		b.ID = lb.Book.ID
		lb.Book = b
		if err := lb.Save(); err != nil {
			return fmt.Errorf("save book: %w", err)
		}

		fmt.Printf("Imported %q as %s (%d chapters, %d paragraphs)\n",
			b.Title, b.ID, len(b.Chapters), b.TotalParagraphs())
		return nil
	},
}

var bookExportCmd = &cobra.Command{
	Use:   "export <uuid> <epub-path>",
	Short: "Export a book, optionally bilingual",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := resolveLibraryRoot(bookRootFlag)
		if err != nil {
			return err
		}
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid book uuid: %w", err)
		}

		lib, err := library.Open(root)
		if err != nil {
			return err
		}
		lb, err := library.LoadLibraryBook(filepath.Join(root, id.String(), "book.dat"))
		if err != nil {
			return fmt.Errorf("load book: %w", err)
		}

		var tr *library.LibraryTranslation
		if bookExportTranslate != "" {
			source, target, err := parseLanguagePair(bookExportTranslate)
			if err != nil {
				return err
			}
			tr, err = lib.GetOrCreateTranslation(id, source, target)
			if err != nil {
				return fmt.Errorf("load translation: %w", err)
			}
		}

		var exporter *epubexport.Exporter
		if tr != nil {
			exporter = epubexport.New(lb.Book, tr.Translation)
		} else {
			exporter = epubexport.New(lb.Book, nil)
		}

		if err := exporter.Build(args[1]); err != nil {
			return fmt.Errorf("export: %w", err)
		}
		fmt.Printf("Exported %s to %s\n", id, args[1])
		return nil
	},
}

var bookTranslateCmd = &cobra.Command{
	Use:   "translate <uuid> <source> <target>",
	Short: "Translate every paragraph of a book lacking a translation for source:target",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := resolveLibraryRoot(bookRootFlag)
		if err != nil {
			return err
		}
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid book uuid: %w", err)
		}
		source, err := language.Parse(args[1])
		if err != nil {
			return fmt.Errorf("invalid source language: %w", err)
		}
		target, err := language.Parse(args[2])
		if err != nil {
			return fmt.Errorf("invalid target language: %w", err)
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		t, err := buildTranslator(cfg, args[1], args[2])
		if err != nil {
			return err
		}

		lib, err := library.Open(root)
		if err != nil {
			return err
		}
		lb, err := library.LoadLibraryBook(filepath.Join(root, id.String(), "book.dat"))
		if err != nil {
			return fmt.Errorf("load book: %w", err)
		}
		lt, err := lib.GetOrCreateTranslation(id, source, target)
		if err != nil {
			return fmt.Errorf("load translation: %w", err)
		}

		ctx := cmd.Context()
		translated := 0
		for _, fp := range lb.Book.FlattenParagraphs() {
			if _, ok := lt.Translation.Latest[fp.GlobalIndex]; ok {
				continue
			}
			dto, err := t.Translate(ctx, fp.Text)
			if err != nil {
				return fmt.Errorf("translate paragraph %d: %w", fp.GlobalIndex, err)
			}
			lt.Translation.AddParagraphTranslation(fp.GlobalIndex, dto, time.Now().Unix())
			if err := lt.Save(); err != nil {
				return fmt.Errorf("save translation: %w", err)
			}
			translated++
		}

		fmt.Printf("Translated %d paragraph(s) of %s (%s -> %s)\n", translated, id, source, target)
		return nil
	},
}

func init() {
	bookCmd.PersistentFlags().StringVar(&bookRootFlag, "root", "", "library root directory (overrides config)")
	bookExportCmd.Flags().StringVar(&bookExportTranslate, "translation", "", "interleave a translation, as source:target (e.g. en:fr)")

	bookCmd.AddCommand(bookImportCmd)
	bookCmd.AddCommand(bookExportCmd)
	bookCmd.AddCommand(bookTranslateCmd)
}

func parseLanguagePair(spec string) (language.Tag, language.Tag, error) {
	parts := strings.SplitN(spec, ":", 2)
	if len(parts) != 2 {
		return language.Tag{}, language.Tag{}, fmt.Errorf("invalid language pair %q: want source:target", spec)
	}
	source, err := language.Parse(parts[0])
	if err != nil {
		return language.Tag{}, language.Tag{}, fmt.Errorf("invalid source language: %w", err)
	}
	target, err := language.Parse(parts[1])
	if err != nil {
		return language.Tag{}, language.Tag{}, fmt.Errorf("invalid target language: %w", err)
	}
	return source, target, nil
}

// buildTranslator constructs the Translator adapter selected by
// cfg.Translator.Provider for the given BCP-47 source/target tags.
func buildTranslator(cfg *config.Config, source, target string) (translator.Translator, error) {
	switch strings.ToLower(cfg.Translator.Provider) {
	case "", "none":
		return translator.NullTranslator{}, nil
	case "openai":
		return translator.NewOpenAITranslator(translator.OpenAIConfig{
			APIKey: cfg.ResolveAPIKey(),
			Model:  cfg.Translator.Model,
			Source: source,
			Target: target,
		})
	default:
		return nil, fmt.Errorf("translate: unknown translator provider %q", cfg.Translator.Provider)
	}
}
