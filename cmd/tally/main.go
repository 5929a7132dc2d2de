package main

import (
	"os"

	"github.com/cleared-dev/tally/internal/commands"
)

func main() {
	os.Exit(commands.Execute())
}
