package cmd

import (
	"fmt"
	"os"

	"github.com/matheuskafuri/paperdeck/internal/arxiv"
	"github.com/matheuskafuri/paperdeck/internal/bibtex"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Export saved papers as BibTeX",
	Long:  `Write the library as a .bib file. Pass "-" to print to stdout. Defaults to papers.bib.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		library, closeKV, err := openLibrary()
		if err != nil {
			return err
		}
		defer closeKV()

		saved, err := library.Saved()
		if err != nil {
			return fmt.Errorf("reading library: %w", err)
		}
		if len(saved) == 0 {
			fmt.Println("Library is empty, nothing to export.")
			return nil
		}

		papers := make([]arxiv.Paper, len(saved))
		for i, sp := range saved {
			papers[i] = sp.Paper
		}
		out := bibtex.File(papers)

		target := "papers.bib"
		if len(args) == 1 {
			target = args[0]
		}
		if target == "-" {
			fmt.Print(out)
			return nil
		}

		if err := os.WriteFile(target, []byte(out), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", target, err)
		}
		fmt.Printf("Exported %d paper(s) to %s\n", len(papers), target)
		return nil
	},
}
