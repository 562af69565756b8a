// Command etl provisions the domain stores and loads every configured source
// file into its table, replacing the previous contents.
package main

import (
	"fmt"
	"os"

	// register all backends with the storage factory.
	// config specifies which to use but we need to build in support for all of them.
	_ "nl2sql/internal/storage/all"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
