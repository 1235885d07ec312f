// Command docsite serves the Actionhero documentation pages with live
// section navigation, or exports them as static HTML.
package main

import (
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
