package commands

import (
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hsuancheng/factset-consensus/internal/model"
	"github.com/hsuancheng/factset-consensus/internal/pipeline"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "執行完整管線（解析 → 驗證 → 彙整 → 匯出）",
	Long: `掃描 markdown 報告目錄，解析並驗證每一份報告，
彙整為每檔股票一筆共識資料，匯出成 CSV。

單一壞檔只會被跳過並記錄，不會中斷整次執行。

Flags:
  --md-dir    報告目錄（預設取自 MD_DIR）
  --out       CSV 輸出目錄（預設取自 CSV_DIR）
  --history   是否保留帶時間戳的歷史檔（預設取自 CSV_KEEP_HISTORY）

Example:
  factset run
  factset run --md-dir data/md --out data/csv
  factset run --history=false`,
	RunE: runRun,
}

var (
	// run flags
	runMDDir   string
	runOut     string
	runHistory bool
)

func init() {
	rootCmd.AddCommand(runCmd)

	// Flags
	runCmd.Flags().StringVar(&runMDDir, "md-dir", "", "markdown 報告目錄")
	runCmd.Flags().StringVar(&runOut, "out", "", "CSV 輸出目錄")
	runCmd.Flags().BoolVar(&runHistory, "history", true, "保留帶時間戳的歷史檔")
}

func runRun(cmd *cobra.Command, args []string) error {
	fmt.Println("=== FactSet Consensus Pipeline ===")

	cfg, log, err := initDeps()
	if err != nil {
		return err
	}
	if runMDDir != "" {
		cfg.MDDir = runMDDir
	}
	if runOut != "" {
		cfg.CSVDir = runOut
	}
	if cmd.Flags().Changed("history") {
		cfg.KeepHistory = runHistory
	}

	fmt.Printf("\n📂 Reports: %s\n", cfg.MDDir)
	fmt.Printf("📄 Output:  %s\n\n", cfg.CSVDir)

	p, err := pipeline.New(cfg, log)
	if err != nil {
		return fmt.Errorf("init pipeline: %w", err)
	}

	// Ctrl+C cancels the run between files.
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary, err := p.Run(ctx)
	if err != nil {
		return fmt.Errorf("pipeline run failed: %w", err)
	}

	printRunSummary(summary)
	return nil
}

func printRunSummary(s *pipeline.Summary) {
	PrintSeparator()
	PrintKeyValue("Run ID", s.RunID, 13)
	PrintKeyValue("Files seen", strconv.Itoa(s.FilesSeen), 13)
	PrintKeyValue("Files parsed", strconv.Itoa(s.FilesParsed), 13)
	PrintKeyValue("Files skipped", strconv.Itoa(s.FilesSkipped), 13)

	if len(s.SkipReasons) > 0 {
		reasons := make([]string, 0, len(s.SkipReasons))
		for reason := range s.SkipReasons {
			reasons = append(reasons, reason)
		}
		sort.Strings(reasons)

		items := make([]string, 0, len(reasons))
		for _, reason := range reasons {
			items = append(items, fmt.Sprintf("%s: %d", reason, s.SkipReasons[reason]))
		}
		fmt.Println("\nSkipped:")
		PrintList(items)
	}

	fmt.Println("\nTier breakdown:")
	for _, tier := range model.AllTiers {
		PrintKeyValue(string(tier), strconv.Itoa(s.Tiers[tier]), 13)
	}

	fmt.Println("\nOutputs:")
	PrintList(s.Outputs)

	fmt.Println()
	PrintSuccess(fmt.Sprintf("%d records exported in %.2fs", s.Records, s.Duration.Seconds()))
}
