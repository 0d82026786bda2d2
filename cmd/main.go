package main

import (
	"os"
	_ "time/tzdata"

	"daily-quiz-bot/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
