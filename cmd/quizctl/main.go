package main

import (
	"os"

	"github.com/primarycell/assessment/cmd/quizctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
