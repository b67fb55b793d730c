package main

import (
	"context"
	"os"

	"github.com/thand-io/reader/cmd/cli"
	"github.com/thand-io/reader/internal/common"
)

func main() {
	ctx, stop := common.WithInterrupt(context.Background())
	defer stop()

	if err := cli.GetCommandOptions().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
