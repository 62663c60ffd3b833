package main

import (
	"context"
	"fmt"
	"os"

	"github.com/comitanigiacomo/kanso-progress/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
