package main

import (
	"context"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/urfave/cli/v3"
)

func verifyCmd() *cli.Command {
	var path string
	return &cli.Command{
		Name:  "verify",
		Usage: "Read a file end-to-end and print a digest of its pixel payload",
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
			arr := img.Data()
			nx, ny, nz := arr.Dims()
			fmt.Printf("%s: ok\n", path)
			fmt.Printf("shape:  %d x %d x %d (%s)\n", nx, ny, nz, arr.DType())
			fmt.Printf("bytes:  %d\n", len(arr.Bytes()))
			fmt.Printf("xxh64:  %016x\n", xxhash.Sum64(arr.Bytes()))
			return nil
		},
	}
}
