package main

import (
	"context"
	"fmt"
	"os"

	"github.com/heartmarshall/cmdgate/internal/app"
)

func main() {
	if err := app.Run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}
