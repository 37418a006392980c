// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Command reqx sends HTTP requests from the command line.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/gogama/reqx/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := cli.NewRootCommand(os.Stdout, os.Stderr).ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "reqx: %v\n", err)
	}
	os.Exit(cli.ExitCode(err))
}
