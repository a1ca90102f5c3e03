package main

import (
	"os"

	"strreg/internal/logging"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		logger := logging.New(logging.Config{Format: logging.HumanFormat, Level: "error"})
		logger.Error("Command execution failed", "error", err.Error())
		os.Exit(1)
	}
}
