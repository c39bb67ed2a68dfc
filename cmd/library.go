package cmd

import (
	"errors"
	"fmt"

	"github.com/matheuskafuri/paperdeck/internal/config"
	"github.com/matheuskafuri/paperdeck/internal/events"
	"github.com/matheuskafuri/paperdeck/internal/store"
	"github.com/spf13/cobra"
)

var flagClearYes bool

var libraryCmd = &cobra.Command{
	Use:   "library",
	Short: "Manage saved papers",
}

var libraryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved papers",
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
			fmt.Println("Library is empty.")
			return nil
		}

		for _, sp := range saved {
			fmt.Printf("%s  %s\n", sp.Paper.ID, sp.Paper.Title)
			fmt.Printf("          saved %s at level %d\n", sp.SavedAt.Format("2006-01-02"), sp.LevelAtSave)
		}
		fmt.Printf("\n%d paper(s)\n", len(saved))
		return nil
	},
}

var libraryClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all saved papers",
	RunE: func(cmd *cobra.Command, args []string) error {
		library, closeKV, err := openLibrary()
		if err != nil {
			return err
		}
		defer closeKV()

		err = library.ClearAll(flagClearYes)
		if errors.Is(err, store.ErrNotConfirmed) {
			fmt.Println("This deletes every saved paper. Re-run with --yes to confirm.")
			return nil
		}
		if err != nil {
			return fmt.Errorf("clearing library: %w", err)
		}
		fmt.Println("Library cleared.")
		return nil
	},
}

func init() {
	libraryClearCmd.Flags().BoolVar(&flagClearYes, "yes", false, "confirm deletion")
	libraryCmd.AddCommand(libraryListCmd)
	libraryCmd.AddCommand(libraryClearCmd)
}

func openLibrary() (*store.Library, func(), error) {
	kv, err := store.OpenKV(config.LibraryPath())
	if err != nil {
		return nil, nil, fmt.Errorf("opening library: %w", err)
	}
	return store.NewLibrary(kv, events.NewBroker()), func() { kv.Close() }, nil
}
