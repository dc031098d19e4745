// barklog - Bark Violation Classifier
//
// barklog reads timestamped bark events and reports which spans of each day
// violate a noise bylaw's continuous or sporadic barking rules.
package main

import (
	"os"

	"github.com/ccollicutt/barklog/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
