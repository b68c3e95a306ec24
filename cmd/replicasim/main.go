// Command replicasim drives a simulated replica workload against the
// observability core, so the tracer, aggregator, packet emitter and
// StatsD formatter are all exercised end to end without a database engine
// behind them.
package main

import (
	"fmt"
	"os"

	"github.com/instantcocoa/replicatrace/cmd/replicasim/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
