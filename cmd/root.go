package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/basketlens/internal/config"
	"github.com/KaramelBytes/basketlens/internal/logger"
)

var (
	// Global flags (wired to config at load time)
	cfgFile string
	debug   bool

	// Loaded configuration
	cfg *cfgpkg.Global
	log zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "basketlens",
	Short: "BasketLens: customer segments and co-purchase rules from POS data",
	Long: `BasketLens analyzes point-of-sale transaction exports: it cleans and
validates the records, segments customers with PCA and k-means, and mines
association rules between purchased items with Apriori.`,
}

// Execute is the entry point called by main.main()
func Execute() {
	cobra.OnInitialize(loadConfig)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.basketlens/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: fall back to defaults so analysis commands still run
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		c = &cfgpkg.Global{}
	}
	cfg = c

	level := cfg.LogLevel
	if debug {
		level = "debug"
	}
	log = logger.New(level)
}

// parseDelimiter maps a flag/config value to a CSV delimiter rune; empty
// means sniff from the file extension.
func parseDelimiter(s string) (rune, error) {
	switch s {
	case "":
		return 0, nil
	case ",":
		return ',', nil
	case ";":
		return ';', nil
	case "\t", "tab":
		return '\t', nil
	default:
		return 0, fmt.Errorf("unsupported --delimiter: %s (use ','|';'|'tab')", s)
	}
}
