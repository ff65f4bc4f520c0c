package main

import (
	"os"
	"time"

	"github.com/kilianp07/pvsim/cmd"
	"github.com/kilianp07/pvsim/core/monitoring"
)

func main() {
	err := cmd.Execute()
	monitoring.Flush(2 * time.Second)
	if err != nil {
		os.Exit(1)
	}
}
