package main

import (
	"os"

	"github.com/xgx-io/xgx-throwctx/cmd/throwdemo/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
