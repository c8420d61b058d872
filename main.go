// main is the entry point for the aieval CLI.
package main

import (
	"fmt"
	"os"

	"github.com/huangsam/aieval/cmd"
	"github.com/huangsam/aieval/internal/iocache"
)

func main() {
	defer iocache.CloseCaching()
	err := cmd.Execute()
	if perr := cmd.StopProfiling(); perr != nil {
		_, _ = fmt.Fprintln(os.Stderr, "Warn could not stop profiling:", perr)
	}
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "Error:", err)
		iocache.CloseCaching()
		os.Exit(1)
	}
}
