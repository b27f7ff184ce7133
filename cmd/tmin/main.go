package main

import (
	"os"

	"github.com/gnolang/tmin/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
