// Command catalogctl queries a course corpus from the terminal and manages
// the PostgreSQL copy of the catalog.
package main

import (
	"log"
	"os"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
