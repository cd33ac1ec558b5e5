package main

import (
	"fmt"
	"math/rand"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"github.com/kass/go-geocode/pkg/geocode"
	"github.com/kass/go-geocode/pkg/metric"
)

type benchOptions struct {
	ops     int
	workers int
	seed    int64
}

func newBenchCmd(opts *rootOptions) *cobra.Command {
	bo := &benchOptions{}
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Measure encode, decode and neighbor throughput",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if bo.workers < 1 || bo.ops < 1 {
				return fmt.Errorf("workers and ops must be positive")
			}
			opts.log.Infof("running %d operations with %d workers", bo.ops, bo.workers)
			res, err := runBench(bo.ops, bo.workers, opts.cfg.Precision, bo.seed)
			if err != nil {
				return err
			}
			return opts.out.print(res)
		},
	}

	cmd.Flags().IntVarP(&bo.ops, "ops", "n", 1000000, "number of operations")
	cmd.Flags().IntVarP(&bo.workers, "workers", "w", runtime.NumCPU(), "number of worker goroutines")
	cmd.Flags().Int64Var(&bo.seed, "seed", time.Now().UnixNano(), "random seed")
	return cmd
}

// runBench encodes random coordinates, decodes the cells and walks their
// neighbors. Each operation also checks that the cell contains its
// coordinate.
func runBench(ops, workers int, precision uint8, seed int64) (benchResult, error) {
	coords := make([]geocode.Coordinate, ops)
	r := rand.New(rand.NewSource(seed))
	for i := range coords {
		c, err := geocode.NewCoordinate(r.Float64()*180-90, r.Float64()*360-180)
		if err != nil {
			return benchResult{}, err
		}
		coords[i] = c
	}

	jobs := make(chan int, workers)
	var (
		wg       sync.WaitGroup
		count    atomic.Int64
		failures atomic.Int64
	)

	start := time.Now()
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				g, err := geocode.Encode(coords[i], precision)
				if err != nil || !g.Decode().Contains(coords[i]) {
					failures.Add(1)
					continue
				}
				_ = g.Neighbors()
				count.Add(1)
			}
		}()
	}
	for i := range coords {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	elapsed := time.Since(start)

	metric.CellOpCnt.WithLabelValues("bench").Add(float64(count.Load()))
	if n := failures.Load(); n > 0 {
		metric.ErrorCnt.WithLabelValues("bench", "cell_mismatch").Add(float64(n))
		return benchResult{}, fmt.Errorf("%d of %d operations failed", n, ops)
	}
	return benchResult{
		Ops:       count.Load(),
		Workers:   workers,
		Precision: precision,
		Elapsed:   elapsed,
		OpsPerSec: float64(count.Load()) / elapsed.Seconds(),
	}, nil
}
