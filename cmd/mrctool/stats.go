package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/emtools/mrcio/pkg/mrc"
)

func statsCmd() *cli.Command {
	var path string
	return &cli.Command{
		Name:  "stats",
		Usage: "Recompute density statistics from the pixel data",
		Flags: append(commonFlags(),
			&cli.StringFlag{
				Name:        "file",
				Aliases:     []string{"f"},
				Usage:       "path to MRC file",
				Destination: &path,
				Required:    true,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := newLogger()
			img, err := newCodec(log).Read(path)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			st, ok := mrc.Summarize(img.Data())
			if !ok {
				return cli.Exit("error: no scalar interpretation for this mode", 1)
			}
			h := img.Meta()
			fmt.Printf("computed:  min=%g max=%g mean=%g rms=%g\n", st.Min, st.Max, st.Mean, st.Sigma)
			fmt.Printf("in header: min=%g max=%g mean=%g rms=%g\n", h.DMin, h.DMax, h.DMean, h.RMS)
			return nil
		},
	}
}
