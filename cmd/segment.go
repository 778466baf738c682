package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/basketlens/internal/logger"
	"github.com/KaramelBytes/basketlens/internal/pipeline"
)

var segmentCmd = &cobra.Command{
	Use:   "segment <file.csv>",
	Short: "Clean the records and compute customer segments (PCA + k-means)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rows, pipeCfg, err := loadInput(cmd, args[0])
		if err != nil {
			return err
		}
		ctx := logger.WithContext(context.Background(), log)
		res, err := pipeline.Segment(ctx, rows, pipeCfg)
		if err != nil {
			return err
		}
		fmt.Println(res.Markdown(sampleRows()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(segmentCmd)
	addAnalysisFlags(segmentCmd)
}
