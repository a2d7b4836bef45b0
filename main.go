// Samarth answers questions about India using live open government data.
package main

import (
	"fmt"
	"os"

	"github.com/samarthdata/samarth/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
