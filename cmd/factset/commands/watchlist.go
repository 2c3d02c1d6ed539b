package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hsuancheng/factset-consensus/internal/watchlist"
)

// watchlistCmd represents the watchlist command
var watchlistCmd = &cobra.Command{
	Use:   "watchlist",
	Short: "顯示觀察名單",
	Long: `列出觀察名單上的股票。只有名單上的股票會被彙整進共識 CSV，
其他股票的報告一律被拒絕。

Example:
  factset watchlist`,
	RunE: runWatchlist,
}

func init() {
	rootCmd.AddCommand(watchlistCmd)
}

func runWatchlist(cmd *cobra.Command, args []string) error {
	cfg, _, err := initDeps()
	if err != nil {
		return err
	}

	list, err := watchlist.Load(cfg.WatchlistPath)
	if err != nil {
		return err
	}

	fmt.Printf("=== Watch List (%s) ===\n\n", cfg.WatchlistPath)

	widths := []int{6, 14, 10}
	PrintTableHeader([]string{"代號", "名稱", "Ticker"}, widths)
	for _, entry := range list.Entries() {
		PrintTableRow([]string{entry.Code, entry.Name, entry.Ticker()}, widths)
	}

	fmt.Printf("\n%d stocks covered\n", list.Len())
	return nil
}
