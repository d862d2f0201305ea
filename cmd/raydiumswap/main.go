package main

import (
	"os"

	"github.com/aman-zulfiqar/raydium-swap/cmd/raydiumswap/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
