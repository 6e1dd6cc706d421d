// Command ballalg builds a ball tree over a synthetic point set using a
// two-level (distributed + shared-memory) parallel construction strategy.
package main

import (
	"github.com/ballalg/ballalg/cmd/cli/cmd"
)

func main() {
	cmd.Execute()
}
