package main

import (
	"context"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/adigiz/leadgen/internal/collector"
	"github.com/adigiz/leadgen/internal/model"
)

var (
	runCategoryID string
	runLocationID string
	runLat        float64
	runLng        float64
	runZoom       int
	runSnapshot   string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one extraction for a category and target",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		e, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		target, err := buildTarget(runLocationID, runLat, runLng, runZoom)
		if err != nil {
			return err
		}

		_, err = runScrape(ctx, e, target, runCategoryID, runSnapshot)
		return err
	},
}

// buildTarget validates the flag combination and produces the search target.
func buildTarget(locationID string, lat, lng float64, zoom int) (model.SearchTarget, error) {
	if locationID != "" {
		return model.KnownLocation(locationID), nil
	}
	if lat == 0 && lng == 0 {
		return model.SearchTarget{}, eris.New("either --location or both --lat and --lng are required")
	}
	if zoom == 0 {
		zoom = 14
	}
	return model.Coordinates(lat, lng, zoom), nil
}

// runScrape extracts records for the target (from the renderer, or from a
// local snapshot file when given) and feeds them through the pipeline.
func runScrape(ctx context.Context, e *env, target model.SearchTarget, categoryID, snapshot string) (int, error) {
	category, err := e.Store.GetCategory(ctx, categoryID)
	if err != nil {
		return 0, err
	}
	if category == nil {
		return 0, eris.Errorf("category not found: %s", categoryID)
	}

	var records []model.RawBusinessRecord
	if snapshot != "" {
		f, err := os.Open(snapshot)
		if err != nil {
			return 0, eris.Wrapf(err, "open snapshot %s", snapshot)
		}
		defer f.Close()
		records, err = collector.ParseFeed(f)
		if err != nil {
			return 0, err
		}
	} else {
		query, err := buildQuery(ctx, e, target, *category)
		if err != nil {
			return 0, err
		}
		records, err = e.Extractor.Extract(ctx, target, query)
		if err != nil {
			return 0, err
		}
	}

	result, err := e.Pipeline.Run(ctx, target, *category, records)
	if err != nil {
		return 0, err
	}

	zap.L().Info("run finished",
		zap.String("category", category.Name),
		zap.Int("saved", result.Saved),
		zap.Int("duplicates", result.Duplicates),
		zap.Int("invalid", result.Invalid),
	)
	return result.Saved, nil
}

// buildQuery composes the renderer search query: the category search term,
// suffixed with the location name when the target is a known location.
func buildQuery(ctx context.Context, e *env, target model.SearchTarget, category model.Category) (string, error) {
	query := category.SearchTerm
	if id, ok := target.LocationID(); ok {
		loc, err := e.Store.GetLocation(ctx, id)
		if err != nil {
			return "", err
		}
		if loc == nil {
			return "", eris.Errorf("location not found: %s", id)
		}
		query += " " + loc.Name
	}
	return query, nil
}

func init() {
	runCmd.Flags().StringVar(&runCategoryID, "category", "", "category id (required)")
	runCmd.Flags().StringVar(&runLocationID, "location", "", "known location id")
	runCmd.Flags().Float64Var(&runLat, "lat", 0, "latitude for a coordinate target")
	runCmd.Flags().Float64Var(&runLng, "lng", 0, "longitude for a coordinate target")
	runCmd.Flags().IntVar(&runZoom, "zoom", 0, "map zoom for a coordinate target")
	runCmd.Flags().StringVar(&runSnapshot, "snapshot", "", "parse a saved feed HTML file instead of calling the renderer")
	_ = runCmd.MarkFlagRequired("category")
	rootCmd.AddCommand(runCmd)
}
