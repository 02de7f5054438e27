// main is the entry point for the evotrack CLI.
package main

import (
	"github.com/Dhyanesh27/evotrack/cmd"
	"github.com/Dhyanesh27/evotrack/internal/contract"
)

func main() {
	if err := cmd.Execute(); err != nil {
		contract.LogFatal("Command failed", err)
	}
}
