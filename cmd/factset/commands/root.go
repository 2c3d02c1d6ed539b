package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hsuancheng/factset-consensus/pkg/config"
	"github.com/hsuancheng/factset-consensus/pkg/logger"
)

var (
	// Global flags
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "factset",
	Short: "FactSet 分析師共識 CSV 管線",
	Long: `factset 將本機的分析師報告 markdown 檔轉成每檔股票一列的共識 CSV。

管線階段：
- 解析：frontmatter 身分、發布日期、EPS / 營收預估、目標價、分析師數
- 驗證：多層內容檢查，確認報告確實在講該檔股票
- 彙整：同一股票的報告合併為單一共識（較新的調查快照優先）
- 匯出：UTF-8 BOM、固定欄位的 CSV（最新檔 + 歷史檔）

Usage:
  factset [command]

Examples:
  factset run
  factset run --md-dir data/md --out data/csv
  factset validate data/md
  factset watchlist
  factset status`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "顯示除錯日誌")
}

// initDeps loads configuration and builds the logger shared by every
// subcommand. --verbose overrides the configured log level.
func initDeps() (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, logger.New(cfg), nil
}
