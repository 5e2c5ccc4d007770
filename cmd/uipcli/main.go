package main

import (
	"os"

	uipclicmd "github.com/uipathcommunity/uipcli/pkg/uipcli/cmd"
)

func main() {
	root := uipclicmd.NewRootCommand(uipclicmd.DefaultConfig())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
