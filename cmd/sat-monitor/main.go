// Package main is the sat-monitor entry point (HTTP + WebSocket).
package main

import (
	"log"

	"github.com/birukG09/Satellite-Telemetry-Visualization-and-Communication-Monitor/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
