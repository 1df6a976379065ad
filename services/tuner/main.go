package main

import (
	"os"

	"go_code_tuner/services/tuner/cmd"
)

func main() {
	if err := cmd.NewTunerCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
