// Command rgdemo compiles and runs render graph frame files.
//
// Usage:
//
//	rgdemo plan scene.yaml
//	rgdemo run --frames 60 scene.yaml
//	rgdemo --verbose run --backend empty scene.yaml
package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"go.trai.ch/zerr"

	"github.com/gogpu/rgraph/cmd/rgdemo/commands"
	"github.com/gogpu/rgraph/internal/demo"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr, demo.App{}))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer, app commands.Application) int {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cli := commands.New(app)
	cli.SetArgs(args)
	cli.SetOutput(stdout, stderr)

	if err := cli.Execute(ctx); err != nil {
		zerr.Log(ctx, slog.New(slog.NewTextHandler(stderr, nil)), err)
		return 1
	}
	return 0
}
