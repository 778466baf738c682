package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/basketlens/internal/dataset"
	"github.com/KaramelBytes/basketlens/internal/logger"
	"github.com/KaramelBytes/basketlens/internal/pipeline"
)

var (
	anaClusters   int
	anaMinSupport float64
	anaMinConf    float64
	anaSeed       int64
	anaWorkers    int
	anaDelimiter  string
	anaSampleRows int
	anaOutputPath string
	anaJSON       bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file.csv>",
	Short: "Run the full pipeline: clean, segment, and mine association rules",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rows, pipeCfg, err := loadInput(cmd, args[0])
		if err != nil {
			return err
		}

		ctx := logger.WithContext(context.Background(), log)
		res, err := pipeline.Run(ctx, rows, pipeCfg)
		if err != nil {
			return err
		}
		return emit(res, sampleRows())
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	addAnalysisFlags(analyzeCmd)
	analyzeCmd.Flags().StringVarP(&anaOutputPath, "output", "o", "", "optional path to write the report (Markdown or JSON)")
	analyzeCmd.Flags().BoolVar(&anaJSON, "json", false, "emit the full result as JSON instead of Markdown")
	analyzeCmd.Flags().IntVar(&anaSampleRows, "sample-rows", 5, "number of sample records in the report (0 = none)")
}

// addAnalysisFlags registers the analysis parameters shared by analyze,
// segment and rules.
func addAnalysisFlags(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&anaClusters, "clusters", "k", 0, "number of customer segments (2-4, default from config)")
	cmd.Flags().Float64Var(&anaMinSupport, "min-support", 0, "minimum itemset support in (0,1] (default from config)")
	cmd.Flags().Float64Var(&anaMinConf, "min-confidence", 0, "minimum rule confidence in (0,1] (default from config)")
	cmd.Flags().Int64Var(&anaSeed, "seed", 0, "random seed for centroid initialization (default from config)")
	cmd.Flags().IntVar(&anaWorkers, "workers", 0, "goroutines for support counting (default from config)")
	cmd.Flags().StringVar(&anaDelimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' (default sniffed)")
}

// loadInput reads the CSV table and folds CLI overrides over the loaded
// configuration into a per-run pipeline config.
func loadInput(cmd *cobra.Command, path string) ([]dataset.RawRow, pipeline.Config, error) {
	delimFlag := anaDelimiter
	if delimFlag == "" && cfg != nil {
		delimFlag = cfg.Delimiter
	}
	delim, err := parseDelimiter(delimFlag)
	if err != nil {
		return nil, pipeline.Config{}, err
	}
	rows, err := dataset.ReadFile(path, delim)
	if err != nil {
		return nil, pipeline.Config{}, err
	}

	pipeCfg := pipeline.Config{}
	if cfg != nil {
		pipeCfg = pipeline.Config{
			ClusterCount:  cfg.Clusters,
			MinSupport:    cfg.MinSupport,
			MinConfidence: cfg.MinConfidence,
			Seed:          cfg.Seed,
			Workers:       cfg.Workers,
		}
	}
	f := cmd.Flags()
	if f.Changed("clusters") {
		pipeCfg.ClusterCount = anaClusters
	}
	if f.Changed("min-support") {
		pipeCfg.MinSupport = anaMinSupport
	}
	if f.Changed("min-confidence") {
		pipeCfg.MinConfidence = anaMinConf
	}
	if f.Changed("seed") {
		pipeCfg.Seed = anaSeed
	}
	if f.Changed("workers") {
		pipeCfg.Workers = anaWorkers
	}
	return rows, pipeCfg, nil
}

func sampleRows() int {
	if anaSampleRows >= 0 {
		return anaSampleRows
	}
	if cfg != nil {
		return cfg.SampleRows
	}
	return 5
}

// emit writes the rendered result to --output or stdout.
func emit(res *pipeline.Result, samples int) error {
	var out []byte
	if anaJSON {
		b, err := res.JSON()
		if err != nil {
			return err
		}
		out = b
	} else {
		out = []byte(res.Markdown(samples))
	}
	if anaOutputPath != "" {
		if err := os.WriteFile(anaOutputPath, out, 0o644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		fmt.Printf("✓ Wrote report to %s\n", anaOutputPath)
		return nil
	}
	fmt.Println(string(out))
	return nil
}
