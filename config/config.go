package config

import (
	"fmt"
	"math"

	"github.com/BurntSushi/toml"
	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is prepended to every environment override, e.g. MESIC_QC_RSQ_FILTER.
const EnvPrefix = "MESIC"

// Config holds the run parameters for every subcommand. Column numbers are
// 1-based, as typed by the user; packages resolve them to 0-based columns.
type Config struct {
	Rsq struct {
		DosageField  string `toml:"dosage_field" envconfig:"DOSAGE_FIELD"`
		ProgressStep int    `toml:"progress_step" envconfig:"PROGRESS_STEP"`
	} `toml:"rsq"`
	Qc struct {
		RsqFilter    float64 `toml:"rsq_filter" envconfig:"RSQ_FILTER"`
		MafFilter    float64 `toml:"maf_filter" envconfig:"MAF_FILTER"`
		Er2Filter    float64 `toml:"er2_filter" envconfig:"ER2_FILTER"`
		HweFilter    float64 `toml:"hwe_filter" envconfig:"HWE_FILTER"`
		RsqCol       int     `toml:"rsq_col" envconfig:"RSQ_COL"`
		MafCol       int     `toml:"maf_col" envconfig:"MAF_COL"`
		Er2Col       int     `toml:"er2_col" envconfig:"ER2_COL"`
		RsqIdCol     int     `toml:"rsq_id_col" envconfig:"RSQ_ID_COL"`
		MafIdCol     int     `toml:"maf_id_col" envconfig:"MAF_ID_COL"`
		NoCases      bool    `toml:"no_cases" envconfig:"NO_CASES"`
		MaxMalformed int     `toml:"max_malformed" envconfig:"MAX_MALFORMED"`
		ProgressStep int     `toml:"progress_step" envconfig:"PROGRESS_STEP"`
	} `toml:"qc"`
	Baseline string `toml:"baseline" envconfig:"BASELINE"`
	Merge    struct {
		Bcftools string `toml:"bcftools" envconfig:"BCFTOOLS"`
		Tabix    string `toml:"tabix" envconfig:"TABIX"`
		TempDir  string `toml:"temp_dir" envconfig:"TEMP_DIR"`
		SnpsOnly bool   `toml:"snps_only" envconfig:"SNPS_ONLY"`
	} `toml:"merge"`
}

// Default returns the built-in parameters.
func Default() Config {
	var c Config
	c.Rsq.DosageField = "HDS"
	c.Rsq.ProgressStep = 500000
	c.Qc.RsqFilter = 0.30
	c.Qc.MafFilter = 0.01
	c.Qc.Er2Filter = 0.90
	c.Qc.HweFilter = 1e-6
	c.Qc.RsqCol = 3
	c.Qc.MafCol = 2
	c.Qc.Er2Col = 5
	c.Qc.RsqIdCol = 1
	c.Qc.MafIdCol = 1
	c.Qc.MaxMalformed = 10
	c.Qc.ProgressStep = 500000
	c.Baseline = "tsim"
	c.Merge.Bcftools = "bcftools"
	c.Merge.Tabix = "tabix"
	c.Merge.TempDir = "."
	return c
}

// Load layers the TOML file at path (skipped when path is empty) and then the
// MESIC_* environment over the defaults.
func Load(path string) (Config, error) {
	c := Default()
	if path != "" {
		if _, err := toml.DecodeFile(path, &c); err != nil {
			return c, fmt.Errorf("reading config %s: %w", path, err)
		}
	}
	if err := envconfig.Process(EnvPrefix, &c); err != nil {
		return c, fmt.Errorf("reading %s_* environment: %w", EnvPrefix, err)
	}
	return c, nil
}

// Validate checks the parameters that every run depends on.
func (c Config) Validate() error {
	cols := []struct {
		name string
		val  int
	}{
		{"rsq_col", c.Qc.RsqCol},
		{"maf_col", c.Qc.MafCol},
		{"er2_col", c.Qc.Er2Col},
		{"rsq_id_col", c.Qc.RsqIdCol},
		{"maf_id_col", c.Qc.MafIdCol},
	}
	for _, col := range cols {
		if col.val < 1 {
			return &Error{Op: "validate", Column: col.name, Value: fmt.Sprint(col.val), Err: ErrBadColumn}
		}
	}
	thresholds := map[string]float64{
		"rsq_filter": c.Qc.RsqFilter,
		"maf_filter": c.Qc.MafFilter,
		"er2_filter": c.Qc.Er2Filter,
		"hwe_filter": c.Qc.HweFilter,
	}
	for name, v := range thresholds {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return &Error{Op: "validate", Column: name, Value: fmt.Sprint(v), Err: ErrBadThreshold}
		}
	}
	if c.Qc.MaxMalformed < 0 {
		return &Error{Op: "validate", Column: "max_malformed", Value: fmt.Sprint(c.Qc.MaxMalformed), Err: ErrBadThreshold}
	}
	if c.Baseline != "tsim" && c.Baseline != "mesic" {
		return &Error{Op: "validate", Column: "baseline", Value: c.Baseline, Err: ErrUnknownBaseline}
	}
	return nil
}
