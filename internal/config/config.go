// Package config externalizes the tunable constants of the detection
// pipeline. Every heuristic threshold lives here so tuning never forks
// the code into parallel variants.
package config

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config is the complete pipeline configuration. Defaults suit typical
// bank statements; overrides come from an optional YAML file and then
// from TABULATOR_* environment variables.
type Config struct {
	Layout   LayoutConfig   `yaml:"layout" envconfig:"LAYOUT"`
	Columns  ColumnConfig   `yaml:"columns" envconfig:"COLUMNS"`
	Strategy StrategyConfig `yaml:"strategy" envconfig:"STRATEGY"`
	Validate ValidateConfig `yaml:"validate" envconfig:"VALIDATE"`
}

// LayoutConfig tunes line grouping and table region segmentation.
type LayoutConfig struct {
	// LineEpsilon is the Y tolerance for tokens to share a line.
	LineEpsilon float64 `yaml:"line_epsilon" envconfig:"LINE_EPSILON"`
	// MaxLineGap is the vertical gap between consecutive lines that
	// breaks a candidate table region.
	MaxLineGap float64 `yaml:"max_line_gap" envconfig:"MAX_LINE_GAP"`
	// CardinalityTolerance is how far consecutive token counts may
	// diverge inside one region.
	CardinalityTolerance int `yaml:"cardinality_tolerance" envconfig:"CARDINALITY_TOLERANCE"`
	// MinRegionLines is the minimum consistent lines before a region is emitted.
	MinRegionLines int `yaml:"min_region_lines" envconfig:"MIN_REGION_LINES"`
	// MergeTolerance is the max difference between adjacent regions'
	// average token counts for the merge pass to fold them.
	MergeTolerance float64 `yaml:"merge_tolerance" envconfig:"MERGE_TOLERANCE"`
}

// ColumnConfig tunes gutter detection and cross-table reconciliation.
// Coverage thresholds are fractions of the region's line count; gutter
// widths are in page units.
type ColumnConfig struct {
	DenseCoverage  float64 `yaml:"dense_coverage" envconfig:"DENSE_COVERAGE"`
	DenseGutter    float64 `yaml:"dense_gutter" envconfig:"DENSE_GUTTER"`
	NormalCoverage float64 `yaml:"normal_coverage" envconfig:"NORMAL_COVERAGE"`
	NormalGutter   float64 `yaml:"normal_gutter" envconfig:"NORMAL_GUTTER"`
	SparseCoverage float64 `yaml:"sparse_coverage" envconfig:"SPARSE_COVERAGE"`
	SparseGutter   float64 `yaml:"sparse_gutter" envconfig:"SPARSE_GUTTER"`

	// DenseTokensPerLine and SparseTokensPerLine classify document
	// density from the average tokens per line.
	DenseTokensPerLine  float64 `yaml:"dense_tokens_per_line" envconfig:"DENSE_TOKENS_PER_LINE"`
	SparseTokensPerLine float64 `yaml:"sparse_tokens_per_line" envconfig:"SPARSE_TOKENS_PER_LINE"`

	// ReconcileTolerance pools boundaries across regions when their
	// x-positions are within this distance.
	ReconcileTolerance float64 `yaml:"reconcile_tolerance" envconfig:"RECONCILE_TOLERANCE"`
	// OverturnMajority is the vote fraction needed to flip a numeric
	// column's meaning away from the highest-confidence assignment.
	OverturnMajority float64 `yaml:"overturn_majority" envconfig:"OVERTURN_MAJORITY"`
}

// StrategyConfig tunes the multi-strategy selector.
type StrategyConfig struct {
	// HeaderScanLines is how many leading lines the header-anchored
	// strategy scans for a column header row.
	HeaderScanLines int `yaml:"header_scan_lines" envconfig:"HEADER_SCAN_LINES"`
	// MinHeaderCategories is the distinct column-keyword categories a
	// line must match to count as a header.
	MinHeaderCategories int `yaml:"min_header_categories" envconfig:"MIN_HEADER_CATEGORIES"`
	// MinColumns and MinRows are the success thresholds a strategy
	// result must meet to win outright.
	MinColumns int `yaml:"min_columns" envconfig:"MIN_COLUMNS"`
	MinRows    int `yaml:"min_rows" envconfig:"MIN_ROWS"`
}

// ValidateConfig tunes the balance chain validator.
type ValidateConfig struct {
	// DefaultTolerance applies when the currency is unknown.
	DefaultTolerance float64 `yaml:"default_tolerance" envconfig:"DEFAULT_TOLERANCE"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Layout: LayoutConfig{
			LineEpsilon:          3.0,
			MaxLineGap:           22.0,
			CardinalityTolerance: 3,
			MinRegionLines:       3,
			MergeTolerance:       2.0,
		},
		Columns: ColumnConfig{
			DenseCoverage:       0.03,
			DenseGutter:         4.0,
			NormalCoverage:      0.08,
			NormalGutter:        6.0,
			SparseCoverage:      0.15,
			SparseGutter:        10.0,
			DenseTokensPerLine:  9.0,
			SparseTokensPerLine: 4.5,
			ReconcileTolerance:  15.0,
			OverturnMajority:    0.8,
		},
		Strategy: StrategyConfig{
			HeaderScanLines:     15,
			MinHeaderCategories: 3,
			MinColumns:          3,
			MinRows:             2,
		},
		Validate: ValidateConfig{
			DefaultTolerance: 0.011,
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file,
// and TABULATOR_* environment variables, in that order of precedence
// (environment wins).
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config file %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config file %q: %w", path, err)
		}
	}

	if err := envconfig.Process("tabulator", &cfg); err != nil {
		return cfg, fmt.Errorf("process environment: %w", err)
	}
	return cfg, nil
}
