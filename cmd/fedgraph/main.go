// Command fedgraph builds, prints and serves GraphQL federation schemas.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
