package main

import (
	"os"

	"go_code_tuner/services/launcher/cmd"
)

func main() {
	if err := cmd.NewLauncherCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
