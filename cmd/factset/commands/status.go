package commands

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/hsuancheng/factset-consensus/internal/export"
	"github.com/hsuancheng/factset-consensus/internal/model"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "顯示最新匯出檔的摘要",
	Long: `讀取最新的共識 CSV，顯示筆數、品質分級統計與更新時間，
不重新解析任何報告。

Example:
  factset status
  factset status --source factset`,
	RunE: runStatus,
}

var (
	// status flags
	statusSource string
)

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().StringVar(&statusSource, "source", "factset", "報告來源")
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, _, err := initDeps()
	if err != nil {
		return err
	}

	path := export.LatestPath(cfg.CSVDir, statusSource)
	summary, err := export.ReadSummary(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			PrintWarning(fmt.Sprintf("no export for source %q yet, run `factset run` first", statusSource))
		}
		return err
	}

	fmt.Println("=== Consensus Export Status ===")
	fmt.Println()
	PrintKeyValue("File", summary.Path, 8)
	PrintKeyValue("Updated", summary.UpdatedAt.Format("2006-01-02 15:04:05"), 8)
	PrintKeyValue("Records", strconv.Itoa(summary.Records), 8)

	fmt.Println("\nTier breakdown:")
	for _, tier := range model.AllTiers {
		PrintKeyValue(string(tier), strconv.Itoa(summary.Tiers[tier]), 12)
	}

	return nil
}
