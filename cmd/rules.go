package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/basketlens/internal/logger"
	"github.com/KaramelBytes/basketlens/internal/pipeline"
)

var rulesCmd = &cobra.Command{
	Use:   "rules <file.csv>",
	Short: "Clean the records and mine association rules (Apriori)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rows, pipeCfg, err := loadInput(cmd, args[0])
		if err != nil {
			return err
		}
		ctx := logger.WithContext(context.Background(), log)
		res, err := pipeline.MineRules(ctx, rows, pipeCfg)
		if err != nil {
			return err
		}
		fmt.Println(res.Markdown(0))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rulesCmd)
	addAnalysisFlags(rulesCmd)
}
