package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	flagConfig     string
	flagMaxResults int
	flagSortBy     string
	flagNoHome     bool
)

var rootCmd = &cobra.Command{
	Use:   "paperdeck [query]",
	Short: "TUI for swiping through arXiv papers",
	Long: `paperdeck searches arXiv and deals the results as a deck of cards.

Swipe left to pass, swipe right to dig one level deeper, press space to
save a paper to your library.`,
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDeck(strings.Join(args, " "))
	},
}

func init() {
	rootCmd.Flags().IntVar(&flagMaxResults, "max-results", 0, "number of papers to deal (overrides config)")
	rootCmd.Flags().StringVar(&flagSortBy, "sort", "", "sort order: relevance, lastUpdatedDate, submittedDate")
	rootCmd.Flags().BoolVar(&flagNoHome, "no-home", false, "skip the home screen and deal immediately")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(libraryCmd)
	rootCmd.AddCommand(exportCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("paperdeck %s (commit: %s, built: %s)\n", version, commit, date)
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
}
