package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mrlokans/calibre-zotero-sync/internal/calibre"
	"github.com/mrlokans/calibre-zotero-sync/internal/entities"
	"github.com/mrlokans/calibre-zotero-sync/internal/utils"
)

type bookAnnotations struct {
	File        string                `json:"file"`
	Title       string                `json:"title"`
	CalibreID   int64                 `json:"calibre_id"`
	Annotations []entities.Annotation `json:"annotations"`
}

func newAnnotationsCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "annotations <book.epub>...",
		Short: "Show the annotations that would be uploaded, without contacting Zotero",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openCalibre()
			if err != nil {
				return err
			}
			defer store.Close()

			var books []bookAnnotations
			for _, path := range args {
				stem, format := utils.SplitBookFilename(path)
				book, err := store.ResolveBook(cmd.Context(), stem, format)
				if err != nil {
					if errors.Is(err, calibre.ErrUnsupportedFormat) || errors.Is(err, calibre.ErrBookNotFound) {
						fmt.Fprintf(cmd.ErrOrStderr(), "Skipping %s: %v\n", filepath.Base(path), err)
						continue
					}
					return err
				}
				annotations, err := store.Annotations(cmd.Context(), book.ID)
				if err != nil {
					return err
				}
				books = append(books, bookAnnotations{
					File:        filepath.Base(path),
					Title:       book.Title,
					CalibreID:   book.ID,
					Annotations: annotations,
				})
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(books)
			}
			for _, b := range books {
				fmt.Fprintf(out, "%s: %q (calibre id %d), %d annotation(s)\n", b.File, b.Title, b.CalibreID, len(b.Annotations))
				if len(b.Annotations) > 0 {
					fmt.Fprintln(out, renderAnnotations(b.Annotations))
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print annotations as JSON")
	return cmd
}
