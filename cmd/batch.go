package main

import (
	"strings"
	"sync/atomic"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	batchCategoryIDs string
	batchLocationID  string
	batchLat         float64
	batchLng         float64
	batchZoom        int
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Run extractions for several categories against one target",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		e, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		target, err := buildTarget(batchLocationID, batchLat, batchLng, batchZoom)
		if err != nil {
			return err
		}

		ids := strings.Split(batchCategoryIDs, ",")
		var saved, failed atomic.Int64

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(3)

		for _, id := range ids {
			id := strings.TrimSpace(id)
			if id == "" {
				continue
			}
			g.Go(func() error {
				n, err := runScrape(gctx, e, target, id, "")
				if err != nil {
					// Per-category failures don't abort the others.
					zap.L().Error("batch: category run failed",
						zap.String("category_id", id),
						zap.Error(err),
					)
					failed.Add(1)
					return nil
				}
				saved.Add(int64(n))
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			return err
		}

		zap.L().Info("batch complete",
			zap.Int64("saved", saved.Load()),
			zap.Int64("failed_categories", failed.Load()),
		)
		return nil
	},
}

func init() {
	batchCmd.Flags().StringVar(&batchCategoryIDs, "categories", "", "comma-separated category ids (required)")
	batchCmd.Flags().StringVar(&batchLocationID, "location", "", "known location id")
	batchCmd.Flags().Float64Var(&batchLat, "lat", 0, "latitude for a coordinate target")
	batchCmd.Flags().Float64Var(&batchLng, "lng", 0, "longitude for a coordinate target")
	batchCmd.Flags().IntVar(&batchZoom, "zoom", 0, "map zoom for a coordinate target")
	_ = batchCmd.MarkFlagRequired("categories")
	rootCmd.AddCommand(batchCmd)
}
