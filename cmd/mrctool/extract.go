package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/emtools/mrcio/pkg/mrc"
)

func extractCmd() *cli.Command {
	var (
		in, out string
		start   int
		count   int
	)
	return &cli.Command{
		Name:  "extract",
		Usage: "Copy a section range into a new MRC file",
		Flags: append(commonFlags(),
			&cli.StringFlag{
				Name:        "in",
				Aliases:     []string{"i"},
				Usage:       "source MRC file",
				Destination: &in,
				Required:    true,
			},
			&cli.StringFlag{
				Name:        "out",
				Aliases:     []string{"o"},
				Usage:       "destination MRC file",
				Destination: &out,
				Required:    true,
			},
			&cli.IntFlag{
				Name:        "start",
				Usage:       "first section, 1-based",
				Value:       1,
				Destination: &start,
			},
			&cli.IntFlag{
				Name:        "count",
				Usage:       "number of sections (0 = all remaining)",
				Destination: &count,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := newLogger()
			codec := newCodec(log)

			img, err := codec.ReadSection(in, start, count)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}

			_, _, nz := img.Data().Dims()
			h := *img.Meta()
			h.NZ = int32(nz)
			if dim, ok := h.Dim(); ok && (dim == mrc.DimImageStack || dim == mrc.DimVolumeStack) {
				h.MZ = int32(nz)
			}

			if err := codec.Write(img.Data(), &h, out); err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			log.Info("sections extracted", "in", in, "out", out, "sections", nz)
			return nil
		},
	}
}
