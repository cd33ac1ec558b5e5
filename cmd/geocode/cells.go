package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/kass/go-geocode/pkg/cellset"
	"github.com/kass/go-geocode/pkg/geocode"
	"github.com/kass/go-geocode/pkg/models"
)

func parseLatLng(latArg, lngArg string) (geocode.Coordinate, error) {
	lat, err := strconv.ParseFloat(latArg, 64)
	if err != nil {
		return geocode.Coordinate{}, fmt.Errorf("invalid latitude %q: %w", latArg, err)
	}
	lng, err := strconv.ParseFloat(lngArg, 64)
	if err != nil {
		return geocode.Coordinate{}, fmt.Errorf("invalid longitude %q: %w", lngArg, err)
	}
	return geocode.NewCoordinate(lat, lng)
}

func newEncodeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "encode LAT LNG",
		Short: "Encode a coordinate into a cell",
		Example: `  geocode encode 25.006 121.46 -p 15
  geocode encode -- -33.8688 151.2093`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := parseLatLng(args[0], args[1])
			if err != nil {
				return err
			}
			g, err := geocode.Encode(c, opts.cfg.Precision)
			if err != nil {
				return err
			}
			opts.log.Debugf("encoded %v at precision %d as %v", c, opts.cfg.Precision, g)
			return opts.out.print(newCellView(g))
		},
	}
}

func newDecodeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "decode BITS",
		Short:   "Show the area of a cell",
		Example: `  geocode decode 0b111001100010110101100011101010 -p 15`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := opts.cellArg(args[0])
			if err != nil {
				return err
			}
			return opts.out.print(newCellView(g))
		},
	}
}

func newNeighborsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "neighbors BITS",
		Short: "List the eight cells around a cell",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := opts.cellArg(args[0])
			if err != nil {
				return err
			}
			return opts.out.print(newNeighborList(g))
		},
	}
}

func newChildrenCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "children BITS",
		Short: "List the four children of a cell",
		Long:  "List the four children of a cell in the order left-bottom, left-top, right-bottom, right-top.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := opts.cellArg(args[0])
			if err != nil {
				return err
			}
			children, err := g.Children()
			if err != nil {
				return err
			}
			return opts.out.print(newCellList(children[:]))
		},
	}
}

func newParentCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "parent BITS",
		Short: "Show the cell one level up",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := opts.cellArg(args[0])
			if err != nil {
				return err
			}
			parent, ok := g.Parent()
			if !ok {
				return fmt.Errorf("cell %v has no parent", g)
			}
			return opts.out.print(newCellView(parent))
		},
	}
}

type coverOptions struct {
	box      models.BoundingBox
	maxCells int
	save     bool
}

func newCoverCmd(opts *rootOptions) *cobra.Command {
	co := &coverOptions{}
	cmd := &cobra.Command{
		Use:   "cover",
		Short: "Cover a bounding box with cells",
		Long: `Cover a bounding box with cells no finer than --precision. With --save the
cells are written to the snapshot file for the locate command.`,
		Example: `  geocode cover --min-lat 32 --min-lon -125 --max-lat 42 --max-lon -114 -p 8 --save`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			coverer := cellset.Coverer{MaxPrecision: opts.cfg.Precision, MaxCells: co.maxCells}
			codes, err := coverer.Cover(co.box)
			if err != nil {
				return err
			}
			opts.log.Infof("covered %+v with %d cells", co.box, len(codes))
			if co.save {
				set, err := cellset.New(codes...)
				if err != nil {
					return err
				}
				if err := set.SaveToFile(opts.cfg.Snapshot); err != nil {
					return err
				}
				opts.log.Infof("saved cover to %s", opts.cfg.Snapshot)
			}
			return opts.out.print(newCellList(codes))
		},
	}

	cmd.Flags().Float64Var(&co.box.BottomLeft.Lat, "min-lat", -90, "minimum latitude")
	cmd.Flags().Float64Var(&co.box.BottomLeft.Lon, "min-lon", -180, "minimum longitude")
	cmd.Flags().Float64Var(&co.box.TopRight.Lat, "max-lat", 90, "maximum latitude")
	cmd.Flags().Float64Var(&co.box.TopRight.Lon, "max-lon", 180, "maximum longitude")
	cmd.Flags().IntVar(&co.maxCells, "max-cells", cellset.DefaultMaxCells, "maximum number of cells")
	cmd.Flags().BoolVar(&co.save, "save", false, "save the cover to the snapshot file")
	return cmd
}

func newLocateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "locate LAT LNG",
		Short: "Find the saved cover cells holding a coordinate",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := parseLatLng(args[0], args[1])
			if err != nil {
				return err
			}
			set, err := cellset.New()
			if err != nil {
				return err
			}
			if err := set.LoadFromFile(opts.cfg.Snapshot); err != nil {
				return err
			}
			opts.log.Debugf("loaded %d cells from %s", set.Len(), opts.cfg.Snapshot)
			return opts.out.print(newCellList(set.Locate(c)))
		},
	}
}
