package main

import (
	"os"

	"github.com/Orochi-Adde/drogon/cli/commands"
	"github.com/Orochi-Adde/drogon/cli/internal/ui"
)

func main() {
	if err := commands.Execute(); err != nil {
		ui.PrintError("%v", err)
		os.Exit(1)
	}
}
