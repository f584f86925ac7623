package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/viant/afs"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/brsynth/sbmlmerge/merge"
	"github.com/brsynth/sbmlmerge/sbml"
)

type config struct {
	PathwayGroupID string   `yaml:"pathwayGroupID"`
	CentralGroupID string   `yaml:"centralGroupID"`
	SinkGroupID    string   `yaml:"sinkGroupID"`
	UpperFluxBound *float64 `yaml:"upperFluxBound"`
	LowerFluxBound *float64 `yaml:"lowerFluxBound"`
	CompartmentID  string   `yaml:"compartmentID"`
	SkipOrphans    bool     `yaml:"skipOrphanRepair"`
}

type report struct {
	Species           map[string]map[string]float64 `json:"species"`
	Reactions         map[string]string             `json:"reactions"`
	SourceFingerprint string                        `json:"sourceFingerprint"`
	TargetFingerprint string                        `json:"targetFingerprint"`
}

func main() {
	source := flag.String("source", "", "source pathway document URL")
	target := flag.String("target", "", "target model document URL")
	out := flag.String("out", "", "merged document output URL")
	configURL := flag.String("config", "", "optional YAML options file")
	logLevel := flag.String("log-level", "warn", "zap log level")
	printReport := flag.Bool("report", false, "print the merge report as JSON")
	flag.Parse()

	if *source == "" || *target == "" || *out == "" {
		flag.Usage()
		os.Exit(2)
	}
	if err := run(*source, *target, *out, *configURL, *logLevel, *printReport); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(sourceURL, targetURL, outURL, configURL, logLevel string, printReport bool) error {
	logger, err := newLogger(logLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx := context.Background()
	fs := afs.New()

	opts := []merge.Option{merge.WithLogger(logger)}
	if configURL != "" {
		fromConfig, err := loadConfig(ctx, fs, configURL)
		if err != nil {
			return err
		}
		opts = append(opts, fromConfig...)
	}

	source, err := sbml.ReadDocument(ctx, fs, sourceURL)
	if err != nil {
		return err
	}
	target, err := sbml.ReadDocument(ctx, fs, targetURL)
	if err != nil {
		return err
	}

	result, err := merge.Merge(source, target, opts...)
	if err != nil {
		return err
	}
	if err := sbml.WriteDocument(ctx, fs, outURL, target); err != nil {
		return err
	}

	if printReport {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report{
			Species:           result.Species,
			Reactions:         result.Reactions,
			SourceFingerprint: fmt.Sprintf("%016x", result.SourceFingerprint),
			TargetFingerprint: fmt.Sprintf("%016x", result.TargetFingerprint),
		})
	}
	return nil
}

func newLogger(level string) (*zap.Logger, error) {
	var lvl zapcore.Level
	if err := lvl.Set(level); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}

func loadConfig(ctx context.Context, fs afs.Service, url string) ([]merge.Option, error) {
	data, err := fs.DownloadWithURL(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("load config %v: %w", url, err)
	}
	var cfg config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %v: %w", url, err)
	}
	var opts []merge.Option
	if cfg.PathwayGroupID != "" {
		opts = append(opts, merge.WithPathwayGroupID(cfg.PathwayGroupID))
	}
	if cfg.CentralGroupID != "" {
		opts = append(opts, merge.WithCentralGroupID(cfg.CentralGroupID))
	}
	if cfg.SinkGroupID != "" {
		opts = append(opts, merge.WithSinkGroupID(cfg.SinkGroupID))
	}
	if cfg.UpperFluxBound != nil || cfg.LowerFluxBound != nil {
		upper, lower := 999999.0, 0.0
		if cfg.UpperFluxBound != nil {
			upper = *cfg.UpperFluxBound
		}
		if cfg.LowerFluxBound != nil {
			lower = *cfg.LowerFluxBound
		}
		opts = append(opts, merge.WithFluxBounds(upper, lower))
	}
	if cfg.CompartmentID != "" {
		opts = append(opts, merge.WithCompartmentID(cfg.CompartmentID))
	}
	if cfg.SkipOrphans {
		opts = append(opts, merge.WithSkipOrphanRepair())
	}
	return opts, nil
}
