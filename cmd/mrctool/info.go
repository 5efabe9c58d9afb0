package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"github.com/urfave/cli/v3"

	"github.com/emtools/mrcio/internal/api"
	"github.com/emtools/mrcio/pkg/mrc"
)

func infoCmd() *cli.Command {
	var (
		path    string
		asJSON  bool
		showExt bool
	)
	return &cli.Command{
		Name:  "info",
		Usage: "Print the header of an MRC file",
		Flags: append(commonFlags(),
			&cli.StringFlag{
				Name:        "file",
				Aliases:     []string{"f"},
				Usage:       "path to MRC file",
				Destination: &path,
				Required:    true,
			},
			&cli.BoolFlag{Name: "json", Usage: "emit JSON", Destination: &asJSON},
			&cli.BoolFlag{Name: "ext", Usage: "hex-dump the extended header", Destination: &showExt},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := newLogger()
			h, err := newCodec(log).ReadHeader(path)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}

			if asJSON {
				b, err := json.MarshalIndent(api.NewHeaderDTO(filepath.Base(path), h), "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(b))
				return nil
			}

			printHeader(path, h)
			if showExt && len(h.ExtHeader) > 0 {
				fmt.Printf("\nextended header (%d bytes):\n", len(h.ExtHeader))
				dumpHex(h.ExtHeader)
			}
			return nil
		},
	}
}

func printHeader(path string, h *mrc.Header) {
	dim, ok := h.Dim()
	dimName := dim.String()
	if !ok {
		dimName = fmt.Sprintf("unknown (ispg=%d mz=%d)", h.ISPG, h.MZ)
	}

	fmt.Printf("MRC header: %s\n", filepath.Base(path))
	row("dimensions", fmt.Sprintf("%d x %d x %d", h.NX, h.NY, h.NZ))
	row("mode", h.Mode.String())
	row("contents", dimName)
	row("grid", fmt.Sprintf("%d x %d x %d (start %d,%d,%d)", h.MX, h.MY, h.MZ, h.NXStart, h.NYStart, h.NZStart))
	row("cell", fmt.Sprintf("%g %g %g", h.CellA, h.CellB, h.CellC))
	row("cell angles", fmt.Sprintf("%g %g %g", h.CellAlpha, h.CellBeta, h.CellGamma))
	row("axis order", fmt.Sprintf("%g %g %g", h.MapC, h.MapR, h.MapS))
	row("density", fmt.Sprintf("min=%g max=%g mean=%g rms=%g", h.DMin, h.DMax, h.DMean, h.RMS))
	row("origin", fmt.Sprintf("%g %g %g", h.OriginX, h.OriginY, h.OriginZ))
	row("space group", fmt.Sprintf("%d", h.ISPG))
	row("version", fmt.Sprintf("%d", h.NVersion))

	tag := strings.TrimRight(string(h.ExtType[:]), " \x00")
	if name, ok := mrc.ExtFormatName(string(h.ExtType[:])); ok {
		tag = fmt.Sprintf("%s (%s)", tag, name)
	}
	row("ext format", tag)
	row("ext bytes", fmt.Sprintf("%d", h.NSymBT))

	for i, label := range h.Labels() {
		row(fmt.Sprintf("label %d", i+1), label)
	}
}

func row(label, value string) {
	if value == "" {
		return
	}
	fmt.Printf("%-14s %s\n", label+":", value)
}

func dumpHex(b []byte) {
	for off := 0; off < len(b); off += 16 {
		end := min(off+16, len(b))
		fmt.Printf("%08x  %x\n", off, b[off:end])
	}
}
