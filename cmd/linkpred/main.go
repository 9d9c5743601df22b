package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"linkpred/internal/candidate"
	"linkpred/internal/config"
	"linkpred/internal/features"
	"linkpred/internal/hierarchy"
	"linkpred/internal/predict"
	"linkpred/internal/storage"

	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{
		Use:           "linkpred",
		Short:         "Predict whether a UI element links to a target screen",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	configPath string
	dbPath     string
)

// Flags shared by predict and features.
var (
	sourcePath string
	elementID  string
	targetPath string
	modelName  string
	appName    string
	traceID    string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "Path to the YAML config file")
	rootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Path to the SQLite prediction log (overrides storage.db_path)")

	for _, cmd := range []*cobra.Command{predictCmd, featuresCmd} {
		cmd.Flags().StringVarP(&sourcePath, "source-screen", "s", "", "Path to the source screen hierarchy (RICO JSON)")
		cmd.Flags().StringVarP(&elementID, "source-element-id", "e", "", "Id of the element on the source screen")
		cmd.Flags().StringVarP(&targetPath, "target-screen", "t", "", "Path to the target screen hierarchy (RICO JSON)")
		cmd.Flags().StringVarP(&modelName, "model", "m", features.PageContainsLabel.String(), "Feature strategy, or \"all\"")
	}
	predictCmd.Flags().StringVar(&appName, "app", "", "Application name recorded with the prediction")
	predictCmd.Flags().StringVar(&traceID, "trace", "", "Trace id recorded with the prediction")
	historyCmd.Flags().IntP("limit", "n", 20, "Number of records to show (0 for all)")

	rootCmd.AddCommand(predictCmd)
	rootCmd.AddCommand(featuresCmd)
	rootCmd.AddCommand(historyCmd)
}

// loadConfig reads the config file and applies the --db override.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if dbPath != "" {
		cfg.Storage.DBPath = dbPath
	}
	return cfg, nil
}

func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}

// parseModel resolves the --model flag. "all" selects every strategy.
func parseModel(name string) ([]features.Strategy, error) {
	if strings.EqualFold(strings.TrimSpace(name), "all") {
		return features.Strategies(), nil
	}
	s, err := features.ParseStrategy(name)
	if err != nil {
		return nil, err
	}
	return []features.Strategy{s}, nil
}

// loadCandidate parses both screens independently and builds the candidate.
func loadCandidate(opts ...candidate.Option) (*candidate.LinkCandidate, error) {
	source, err := hierarchy.ParseFile(sourcePath)
	if err != nil {
		return nil, err
	}
	target, err := hierarchy.ParseFile(targetPath)
	if err != nil {
		return nil, err
	}
	return candidate.New(source, elementID, target, opts...)
}

// promptMissing asks for any of the screen flags left empty.
func promptMissing(cmd *cobra.Command) error {
	p := newPrompter(cmd.InOrStdin(), cmd.ErrOrStderr())
	for _, f := range []struct {
		value *string
		label string
	}{
		{&sourcePath, "Source screen"},
		{&elementID, "Source element id"},
		{&targetPath, "Target screen"},
	} {
		if *f.value != "" {
			continue
		}
		v, err := p.Ask(f.label)
		if err != nil {
			return err
		}
		*f.value = v
	}
	return nil
}

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Score a link candidate with the trained classifier",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		strategies, err := parseModel(modelName)
		if err != nil {
			return err
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger, err := newLogger(cmd.ErrOrStderr(), cfg.Log.Level)
		if err != nil {
			return err
		}
		if err := promptMissing(cmd); err != nil {
			return err
		}

		c, err := loadCandidate(candidate.WithApplicationName(appName), candidate.WithTraceID(traceID))
		if err != nil {
			return err
		}

		opts := []predict.Option{predict.WithLogger(logger)}
		if cfg.Storage.DBPath != "" {
			store, err := storage.NewSQLiteStore(cfg.Storage.DBPath)
			if err != nil {
				return fmt.Errorf("failed to open prediction log: %w", err)
			}
			defer store.Close()
			opts = append(opts, predict.WithRecorder(store))
		}

		predictors := make([]*predict.Predictor, 0, len(strategies))
		for _, s := range strategies {
			p, err := predict.Load(cfg.Models.Dir, s, cfg.Features, opts...)
			if err != nil {
				return err
			}
			predictors = append(predictors, p)
		}

		results, err := predict.PredictAll(cmd.Context(), c, predictors)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, r := range results {
			if len(results) > 1 {
				fmt.Fprintf(out, "%s: ", r.Strategy)
			}
			fmt.Fprintln(out, formatResult(r))
		}
		return nil
	},
}

func formatResult(r predict.Result) string {
	return fmt.Sprintf("%s (score=%.3f)", r.Label, r.Score)
}

var featuresCmd = &cobra.Command{
	Use:   "features",
	Short: "Print the feature vector a strategy extracts for a candidate",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		strategies, err := parseModel(modelName)
		if err != nil {
			return err
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := promptMissing(cmd); err != nil {
			return err
		}
		c, err := loadCandidate()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, s := range strategies {
			ext, err := features.New(s, cfg.Features)
			if err != nil {
				return err
			}
			v, err := ext.Extract(c)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "# %s\n", s)
			for i, name := range ext.Names() {
				fmt.Fprintf(out, "%s=%g\n", name, v[i])
			}
		}
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List predictions stored in the prediction log",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.Storage.DBPath == "" {
			return fmt.Errorf("no prediction log configured (use --db or storage.db_path)")
		}
		limit, _ := cmd.Flags().GetInt("limit")

		store, err := storage.NewSQLiteStore(cfg.Storage.DBPath)
		if err != nil {
			return fmt.Errorf("failed to open prediction log: %w", err)
		}
		defer store.Close()

		records, err := store.ListPredictions(cmd.Context(), limit)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, r := range records {
			fmt.Fprintf(out, "%s  %s  %s  %s/%s -> %s  %s (score=%.3f)\n",
				r.CreatedAt.Format("2006-01-02 15:04:05"), r.ID, r.Strategy,
				r.SourceScreen, r.ElementID, r.TargetScreen, r.Label, r.Score)
		}
		return nil
	},
}
