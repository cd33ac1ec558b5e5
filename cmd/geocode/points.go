package main

import (
	"fmt"
	"math/rand"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/kass/go-geocode/pkg/geocode"
	"github.com/kass/go-geocode/pkg/models"
	"github.com/kass/go-geocode/pkg/store"
)

type loadOptions struct {
	numPoints int
	workers   int
	seed      int64
	box       models.BoundingBox
}

func newLoadCmd(opts *rootOptions) *cobra.Command {
	lo := &loadOptions{}
	cmd := &cobra.Command{
		Use:   "load",
		Short: "Load random points into Postgres",
		Long: `Generate random points inside a bounding box and store them in Postgres
keyed by their cell at the configured precision.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := lo.box.Area(); err != nil {
				return err
			}
			if lo.workers < 1 {
				return fmt.Errorf("invalid worker count %d", lo.workers)
			}
			ctx := cmd.Context()
			s, err := store.Open(ctx, opts.cfg.Postgres, opts.cfg.Precision)
			if err != nil {
				return err
			}
			defer s.Close()
			if err := s.InitSchema(ctx); err != nil {
				return err
			}

			opts.log.Infof("generating %d random points with %d workers", lo.numPoints, lo.workers)
			points := generateRandomPoints(lo.numPoints, lo.box, lo.workers, lo.seed)

			start := time.Now()
			if err := s.BulkInsertPoints(ctx, points); err != nil {
				return err
			}
			elapsed := time.Since(start)

			total, err := s.Count(ctx)
			if err != nil {
				return err
			}
			return opts.out.print(loadResult{
				Points:    len(points),
				Total:     total,
				Precision: s.Precision(),
				Elapsed:   elapsed,
			})
		},
	}

	cmd.Flags().IntVarP(&lo.numPoints, "points", "n", 100000, "number of points to generate")
	cmd.Flags().IntVarP(&lo.workers, "workers", "w", runtime.NumCPU(), "number of worker goroutines")
	cmd.Flags().Int64Var(&lo.seed, "seed", time.Now().UnixNano(), "random seed")
	// roughly the USA
	cmd.Flags().Float64Var(&lo.box.BottomLeft.Lat, "min-lat", 25.0, "minimum latitude")
	cmd.Flags().Float64Var(&lo.box.TopRight.Lat, "max-lat", 49.0, "maximum latitude")
	cmd.Flags().Float64Var(&lo.box.BottomLeft.Lon, "min-lon", -125.0, "minimum longitude")
	cmd.Flags().Float64Var(&lo.box.TopRight.Lon, "max-lon", -66.0, "maximum longitude")
	return cmd
}

// generateRandomPoints fills n points uniformly inside box. Work is split
// into ranges handed to the workers over a channel; each worker has its own
// generator so the output depends only on seed and workers.
func generateRandomPoints(n int, box models.BoundingBox, workers int, seed int64) []*models.Point {
	points := make([]*models.Point, n)

	type workRange struct {
		start, end int
	}
	work := make(chan workRange, workers)
	done := make(chan bool, workers)

	minLat, minLon := box.BottomLeft.Lat, box.BottomLeft.Lon
	latSpan, lonSpan := box.TopRight.Lat-minLat, box.TopRight.Lon-minLon

	for w := 0; w < workers; w++ {
		go func(workerID int) {
			r := rand.New(rand.NewSource(seed + int64(workerID)))
			for wr := range work {
				for i := wr.start; i < wr.end; i++ {
					points[i] = &models.Point{
						ID: fmt.Sprintf("point_%d", i),
						Location: &models.Location{
							Lat: minLat + r.Float64()*latSpan,
							Lon: minLon + r.Float64()*lonSpan,
						},
					}
				}
			}
			done <- true
		}(w)
	}

	perWorker, remainder := n/workers, n%workers
	start := 0
	for w := 0; w < workers; w++ {
		size := perWorker
		if w < remainder {
			size++
		}
		work <- workRange{start: start, end: start + size}
		start += size
	}
	close(work)

	for w := 0; w < workers; w++ {
		<-done
	}
	return points
}

type queryOptions struct {
	lat, lon float64
}

func newQueryCmd(opts *rootOptions) *cobra.Command {
	qo := &queryOptions{}
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Find stored points in the cell of a coordinate and its neighbors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := geocode.NewCoordinate(qo.lat, qo.lon)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			s, err := store.Open(ctx, opts.cfg.Postgres, opts.cfg.Precision)
			if err != nil {
				return err
			}
			defer s.Close()

			start := time.Now()
			points, err := s.Nearby(ctx, c)
			if err != nil {
				return err
			}
			opts.log.Infof("found %d points around %v in %v", len(points), c, time.Since(start))
			return opts.out.print(pointList(points))
		},
	}

	cmd.Flags().Float64Var(&qo.lat, "lat", 0, "latitude")
	cmd.Flags().Float64Var(&qo.lon, "lon", 0, "longitude")
	cmd.MarkFlagRequired("lat")
	cmd.MarkFlagRequired("lon")
	return cmd
}
