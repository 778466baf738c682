// Package pipeline wires the cleaning, segmentation and mining stages into
// one per-run computation with no state shared across runs.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/KaramelBytes/basketlens/internal/apriori"
	"github.com/KaramelBytes/basketlens/internal/dataset"
	"github.com/KaramelBytes/basketlens/internal/kmeans"
	"github.com/KaramelBytes/basketlens/internal/logger"
	"github.com/KaramelBytes/basketlens/internal/pca"
)

// Cluster-count bounds exposed to callers; the k-means algorithm itself
// accepts any k between 1 and the point count.
const (
	MinClusters = 2
	MaxClusters = 4
)

// Config is the immutable per-run configuration. Callers construct a fresh
// one per invocation; nothing is cached between runs.
type Config struct {
	ClusterCount  int     `json:"cluster_count"`
	MinSupport    float64 `json:"min_support"`
	MinConfidence float64 `json:"min_confidence"`
	Seed          int64   `json:"seed"`
	Workers       int     `json:"workers"`
}

// Validate checks the configuration bounds before any work starts.
func (c Config) Validate() error {
	if c.ClusterCount < MinClusters || c.ClusterCount > MaxClusters {
		return fmt.Errorf("pipeline: cluster count must be in [%d,%d], got %d", MinClusters, MaxClusters, c.ClusterCount)
	}
	if c.MinSupport <= 0 || c.MinSupport > 1 {
		return fmt.Errorf("pipeline: min support must be in (0,1], got %g", c.MinSupport)
	}
	if c.MinConfidence <= 0 || c.MinConfidence > 1 {
		return fmt.Errorf("pipeline: min confidence must be in (0,1], got %g", c.MinConfidence)
	}
	return nil
}

// Result is the full output of one pipeline run.
//
// ClusterErr records a segmentation failure (unsuitable numeric data or an
// invalid cluster count for the point count); mining proceeds independently
// and the rest of the result stays valid. A run-level error is returned
// only when the whole run cannot proceed.
type Result struct {
	RunID   string                      `json:"run_id"`
	Config  Config                      `json:"config"`
	Records []dataset.TransactionRecord `json:"records"`

	// Segmentation output; empty when ClusterErr is set.
	Points     []pca.Point `json:"points,omitempty"`
	Labels     []int       `json:"labels,omitempty"`
	Centroids  []pca.Point `json:"centroids,omitempty"`
	ClusterErr error       `json:"-"`

	// Mining output.
	Frequent *apriori.FrequentItemsets `json:"frequent"`
	Rules    apriori.Rankings          `json:"rules"`

	Elapsed time.Duration `json:"elapsed_ns"`
}

// Run executes the whole pipeline over the raw rows: clean once, then
// segment (PCA + k-means) and mine (Apriori + rules) over the same
// validated record set. Each invocation is independent and side-effect
// free, so concurrent runs over distinct inputs need no coordination.
func Run(ctx context.Context, rows []dataset.RawRow, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := logger.FromContext(ctx)
	start := time.Now()

	records, err := dataset.Clean(rows)
	if err != nil {
		return nil, err
	}
	log.Debug().Int("raw", len(rows)).Int("validated", len(records)).Msg("cleaning done")

	res := &Result{
		RunID:   uuid.NewString(),
		Config:  cfg,
		Records: records,
	}

	segment(records, cfg, res)
	if res.ClusterErr != nil {
		log.Warn().Err(res.ClusterErr).Msg("segmentation skipped, mining proceeds")
	} else {
		log.Debug().Int("clusters", cfg.ClusterCount).Msg("segmentation done")
	}

	if err := mine(records, cfg, res); err != nil {
		return nil, err
	}
	log.Debug().
		Int("frequent_itemsets", len(res.Frequent.Sets)).
		Int("rules", len(res.Rules.ByConfidence)).
		Msg("mining done")

	res.Elapsed = time.Since(start)
	return res, nil
}

// Segment runs only the cleaning and clustering branch. Unlike Run, a
// clustering failure is the result here, so it surfaces as the error.
func Segment(ctx context.Context, rows []dataset.RawRow, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	records, err := dataset.Clean(rows)
	if err != nil {
		return nil, err
	}
	res := &Result{RunID: uuid.NewString(), Config: cfg, Records: records}
	segment(records, cfg, res)
	if res.ClusterErr != nil {
		return nil, res.ClusterErr
	}
	return res, nil
}

// MineRules runs only the cleaning and mining branch.
func MineRules(ctx context.Context, rows []dataset.RawRow, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	records, err := dataset.Clean(rows)
	if err != nil {
		return nil, err
	}
	res := &Result{RunID: uuid.NewString(), Config: cfg, Records: records}
	if err := mine(records, cfg, res); err != nil {
		return nil, err
	}
	return res, nil
}

func segment(records []dataset.TransactionRecord, cfg Config, res *Result) {
	points, err := pca.Reduce(dataset.Matrix(records))
	if err != nil {
		res.ClusterErr = err
		return
	}
	clustered, err := kmeans.Cluster(points, cfg.ClusterCount, kmeans.Options{Seed: cfg.Seed})
	if err != nil {
		res.ClusterErr = err
		return
	}
	res.Points = points
	res.Labels = clustered.Labels
	res.Centroids = clustered.Centroids
}

func mine(records []dataset.TransactionRecord, cfg Config, res *Result) error {
	freq, err := apriori.Mine(dataset.Transactions(records), cfg.MinSupport, apriori.Options{Workers: cfg.Workers})
	if err != nil {
		return err
	}
	rules, err := apriori.GenerateRules(freq, cfg.MinConfidence)
	if err != nil {
		return err
	}
	res.Frequent = freq
	res.Rules = rules
	return nil
}
