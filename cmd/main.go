package main

import (
	"fmt"
	"os"

	"github.com/yungbote/prepstack-backend/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "prepstack: %v\n", err)
		os.Exit(1)
	}
}
