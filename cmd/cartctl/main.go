// Command cartctl inspects and edits the persisted storefront cart from a
// terminal. It shares the storage configuration of the storefront server.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "cartctl:", err)
		os.Exit(1)
	}
}
