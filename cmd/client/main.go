package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/marketsales/internal/client/cli"
)

func main() {
	if err := cli.NewRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
