// Command server runs the storefront gateway without the CLI wrapper.
// Equivalent to `thiwa run`.
package main

import (
	"log"

	"github.com/gtera/thiwa/internal/server"
)

func main() {
	if err := server.Start(); err != nil {
		log.Fatal(err)
	}
}
