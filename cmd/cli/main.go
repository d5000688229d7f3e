// chatlens - Chat Export Statistics
//
// chatlens parses plain-text chat exports and reports who talks, when,
// about what, and how quickly they answer.
package main

import (
	"os"

	"github.com/ccollicutt/chatlens/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
