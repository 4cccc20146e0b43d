package main

import (
	"fmt"
	"os"

	"github.com/panyam/graphqxl/cmd/graphqxl/commands"
	"github.com/panyam/graphqxl/config"
)

func main() {
	if err := config.LoadEnvFile(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	commands.Execute()
}
