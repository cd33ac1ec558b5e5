package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/kass/go-geocode/pkg/cellset"
	"github.com/kass/go-geocode/pkg/config"
	"github.com/kass/go-geocode/pkg/geocode"
	"github.com/kass/go-geocode/pkg/logging"
	"github.com/kass/go-geocode/pkg/metric"
	"github.com/kass/go-geocode/pkg/store"
)

// rootOptions holds the global flags and the resolved configuration.
type rootOptions struct {
	configFile string
	format     string
	verbose    bool
	precision  uint8
	snapshot   string
	glog       bool
	metricsOut string

	cfg *config.Config
	out *formatter
	log *logging.LevelLogger
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "geocode",
		Short: "Z-order geocode tool",
		Long: `Encode coordinates into interleaved geocode cells, walk their neighbors
and children, cover bounding boxes with cells and index points in Postgres
by cell.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "TOML config file")
	cmd.PersistentFlags().StringVar(&opts.format, "format", "text", "output format (text|json|yaml)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().Uint8VarP(&opts.precision, "precision", "p", config.Default().Precision, "bits per axis")
	cmd.PersistentFlags().StringVar(&opts.snapshot, "snapshot", config.Default().Snapshot, "cell set snapshot file")
	cmd.PersistentFlags().BoolVar(&opts.glog, "glog", false, "log through glog (to stderr unless log_dir is set)")
	cmd.PersistentFlags().StringVar(&opts.metricsOut, "metrics-out", "", "write Prometheus metrics to this file on exit (- for stderr)")

	cmd.AddCommand(
		newEncodeCmd(opts),
		newDecodeCmd(opts),
		newNeighborsCmd(opts),
		newChildrenCmd(opts),
		newParentCmd(opts),
		newCoverCmd(opts),
		newLocateCmd(opts),
		newLoadCmd(opts),
		newQueryCmd(opts),
		newBenchCmd(opts),
	)

	// metrics are written even when the command fails
	for _, sub := range cmd.Commands() {
		run := sub.RunE
		sub.RunE = func(c *cobra.Command, args []string) error {
			return errors.Join(run(c, args), opts.writeMetrics(c))
		}
	}
	return cmd
}

// setup loads the config file and lets explicitly set flags override it.
func (o *rootOptions) setup(cmd *cobra.Command) error {
	cfg := config.Default()
	if o.configFile != "" {
		loaded, err := config.Load(o.configFile)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	flags := cmd.Flags()
	if flags.Changed("format") || o.configFile == "" {
		cfg.Format = o.format
	}
	if flags.Changed("precision") || o.configFile == "" {
		cfg.Precision = o.precision
	}
	if flags.Changed("snapshot") || o.configFile == "" {
		cfg.Snapshot = o.snapshot
	}
	if flags.Changed("metrics-out") {
		cfg.MetricsOut = o.metricsOut
	}
	if o.glog {
		cfg.Glog = true
	}
	if o.verbose {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	o.cfg = cfg

	level, _ := logging.ParseLevel(cfg.LogLevel)
	var sink logging.Logger = logging.NewDefaultLogger("geocode")
	if cfg.Glog || cfg.LogDir != "" {
		if err := logging.UseGlog(cfg.LogDir, int(level)); err != nil {
			return err
		}
		sink = logging.GLogger{}
	}
	o.log = logging.NewLevelLogger(level, sink)
	cellset.SetLogger(level, sink)
	store.SetLogger(level, sink)

	o.out = &formatter{format: cfg.Format, w: cmd.OutOrStdout()}
	return nil
}

func (o *rootOptions) writeMetrics(cmd *cobra.Command) error {
	switch o.cfg.MetricsOut {
	case "":
		return nil
	case "-":
		return metric.WriteText(cmd.ErrOrStderr(), prometheus.DefaultGatherer)
	}
	f, err := os.Create(o.cfg.MetricsOut)
	if err != nil {
		return fmt.Errorf("failed to create metrics file: %w", err)
	}
	if err := metric.WriteText(f, prometheus.DefaultGatherer); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// cellArg parses a cell address at the configured precision. Prefixes
// 0b, 0o and 0x are accepted.
func (o *rootOptions) cellArg(s string) (geocode.GeoCode, error) {
	bits, err := parseBits(s)
	if err != nil {
		return geocode.GeoCode{}, err
	}
	return geocode.FromBits(bits, o.cfg.Precision)
}

func main() {
	err := newRootCmd().Execute()
	logging.Flush()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
