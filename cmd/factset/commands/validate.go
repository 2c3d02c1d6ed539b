package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/hsuancheng/factset-consensus/internal/mdreport"
	"github.com/hsuancheng/factset-consensus/internal/pipeline"
	"github.com/hsuancheng/factset-consensus/internal/validate"
	"github.com/hsuancheng/factset-consensus/internal/watchlist"
)

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate [file|dir]",
	Short: "只做解析與驗證，逐檔輸出判定",
	Long: `對單一報告檔或整個目錄跑解析與內容驗證，不做彙整、不寫 CSV。

每個檔案輸出一行判定：通過的附上驗證層與信心值，
被拒絕的附上原因。用來排查某份報告為何被管線跳過。

Example:
  factset validate data/md
  factset validate data/md/2330_台積電_factset_a1b2c3d4.md`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Report Validation ===")
	fmt.Println()

	cfg, log, err := initDeps()
	if err != nil {
		return err
	}

	list, err := watchlist.Load(cfg.WatchlistPath)
	if err != nil {
		return err
	}

	target := args[0]
	info, err := os.Stat(target)
	if err != nil {
		return err
	}

	var files []string
	if info.IsDir() {
		files, err = pipeline.ReportFiles(target)
		if err != nil {
			return err
		}
		if len(files) == 0 {
			PrintWarning(fmt.Sprintf("no markdown reports under %s", target))
			return nil
		}
	} else {
		files = []string{target}
	}

	zl := log.Zerolog()
	parser := mdreport.NewParser(zl)
	checker := validate.NewChecker(zl)

	valid := 0
	for _, path := range files {
		name := filepath.Base(path)

		report, err := parser.ParseFile(path)
		if err != nil {
			PrintError(fmt.Sprintf("%s: %v", name, err))
			continue
		}

		entry, ok := list.Get(report.StockCode)
		if !ok {
			PrintError(fmt.Sprintf("%s: stock %s not on watch list", name, report.StockCode))
			continue
		}

		verdict := checker.Check(report.Title, report.Content, report.StockCode, entry.Name)
		if verdict.Valid {
			valid++
			PrintSuccess(fmt.Sprintf("%s: %s (%s, confidence %.2f)",
				name, verdict.Reason, verdict.Layer, verdict.Confidence))
		} else {
			PrintError(fmt.Sprintf("%s: %s (%s)", name, verdict.Reason, verdict.Layer))
		}
	}

	fmt.Println()
	fmt.Printf("Valid: %d / %d\n", valid, len(files))
	return nil
}
