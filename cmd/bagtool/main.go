// Command bagtool creates, inspects, and batch-processes BAG containers, in
// the same shape as the teacher's GSF conversion CLI: one urfave/cli
// subcommand per operation, and a pond worker pool for the batch variant.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"

	"github.com/alitto/pond"
	"github.com/urfave/cli/v2"

	"github.com/bathyware/bag"
	"github.com/bathyware/bag/internal/discovery"
)

func createBag(uri string, rows, cols uint32, originX, originY, spacingX, spacingY float64, horizontalCRS string) error {
	meta := bag.Metadata{
		HorizontalCRS: horizontalCRS,
		VerticalCRS:   "",
		Rows:          rows,
		Cols:          cols,
		OriginX:       originX,
		OriginY:       originY,
		SpacingX:      spacingX,
		SpacingY:      spacingY,
	}

	log.Println("Creating BAG:", uri)
	ds, err := bag.Create(uri, meta, rows, cols, bag.NopCrsTranslator{})
	if err != nil {
		return err
	}
	return ds.Close()
}

func infoBag(uri string) error {
	ds, err := bag.Open(uri, bag.ReadOnly, noopMetadataProvider{}, bag.NopCrsTranslator{})
	if err != nil {
		return err
	}
	defer ds.Close()

	meta := ds.Metadata()
	fmt.Printf("%s: %dx%d, origin=(%.3f,%.3f) spacing=(%.3f,%.3f) crs=%q\n",
		uri, meta.Rows, meta.Cols, meta.OriginX, meta.OriginY, meta.SpacingX, meta.SpacingY, meta.HorizontalCRS)

	if elev, err := ds.GetLayer(bag.Elevation); err == nil {
		fmt.Printf("  Elevation: min=%.3f max=%.3f\n", elev.Descriptor().MinValue(), elev.Descriptor().MaxValue())
	}
	if tl := ds.TrackingList(); tl != nil {
		fmt.Printf("  Tracking list entries: %d\n", tl.Len())
	}
	return nil
}

// batchResample walks uri for BAG containers and hands each one to
// resampleOne, spreading work across a fixed pond pool sized at 2*NumCPU,
// mirroring the teacher's convert_gsf_list.
func batchResample(uri, configURI string, correctorIndex int) error {
	log.Println("Searching uri:", uri)
	items, err := discovery.FindBags(uri, configURI)
	if err != nil {
		return err
	}
	log.Println("Number of BAGs to process:", len(items))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	n := runtime.NumCPU() * 2
	pool := pond.New(n, 0, pond.MinWorkers(n), pond.Context(ctx))
	defer pool.StopAndWait()

	for _, name := range items {
		itemURI := name
		pool.Submit(func() {
			if err := resampleOne(itemURI, correctorIndex); err != nil {
				log.Printf("resample %s: %v", itemURI, err)
			}
		})
	}

	return nil
}

// resampleOne opens the container read-write, logs it with the requested
// corrector index, and closes it again. It does not read or write any
// surface-correction data.
func resampleOne(uri string, correctorIndex int) error {
	ds, err := bag.Open(uri, bag.ReadWrite, noopMetadataProvider{}, bag.NopCrsTranslator{})
	if err != nil {
		return err
	}
	defer ds.Close()

	log.Println("Opened:", uri, "corrector", correctorIndex)
	return nil
}

// noopMetadataProvider stands in for the real XML metadata parser, which is
// out of scope for this engine (§1); bagtool only exercises it against
// containers whose metadata block has already been validated upstream.
type noopMetadataProvider struct{}

func (noopMetadataProvider) Parse(xml []byte) (bag.Metadata, error) {
	return bag.Metadata{}, nil
}

func (noopMetadataProvider) Emit(m bag.Metadata) ([]byte, error) {
	return nil, nil
}

func main() {
	app := &cli.App{
		Name:  "bagtool",
		Usage: "create, inspect, and batch-process Bathymetric Attributed Grid containers",
		Commands: []*cli.Command{
			{
				Name: "create",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "uri", Usage: "URI or pathname for the new BAG container.", Required: true},
					&cli.UintFlag{Name: "rows", Usage: "Number of grid rows.", Required: true},
					&cli.UintFlag{Name: "cols", Usage: "Number of grid columns.", Required: true},
					&cli.Float64Flag{Name: "origin-x", Usage: "Grid origin X (projected units)."},
					&cli.Float64Flag{Name: "origin-y", Usage: "Grid origin Y (projected units)."},
					&cli.Float64Flag{Name: "spacing-x", Usage: "Grid cell spacing along X."},
					&cli.Float64Flag{Name: "spacing-y", Usage: "Grid cell spacing along Y."},
					&cli.StringFlag{Name: "horizontal-crs", Usage: "Horizontal CRS WKT or identifier."},
				},
				Action: func(cCtx *cli.Context) error {
					return createBag(
						cCtx.String("uri"),
						uint32(cCtx.Uint("rows")),
						uint32(cCtx.Uint("cols")),
						cCtx.Float64("origin-x"),
						cCtx.Float64("origin-y"),
						cCtx.Float64("spacing-x"),
						cCtx.Float64("spacing-y"),
						cCtx.String("horizontal-crs"),
					)
				},
			},
			{
				Name: "info",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "uri", Usage: "URI or pathname to a BAG container.", Required: true},
				},
				Action: func(cCtx *cli.Context) error {
					return infoBag(cCtx.String("uri"))
				},
			},
			{
				Name: "batch-resample",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "uri", Usage: "URI or pathname to a directory containing BAG containers.", Required: true},
					&cli.StringFlag{Name: "config-uri", Usage: "URI or pathname to a TileDB config file."},
					&cli.IntFlag{Name: "corrector-index", Usage: "Index of the vertical-datum corrector to resample.", Value: 0},
				},
				Action: func(cCtx *cli.Context) error {
					return batchResample(cCtx.String("uri"), cCtx.String("config-uri"), cCtx.Int("corrector-index"))
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
