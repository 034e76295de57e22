package main

import (
	"flag"
	"fmt"
	"log"

	"quickzone-pickup/pkg/securecode"
)

// Prints freshly generated mission codes, for manually re-issuing a code
// over the phone when a driver's app is unreachable.
func main() {
	n := flag.Int("n", 1, "number of codes to print")
	flag.Parse()

	g := securecode.NewGenerator()
	for i := 0; i < *n; i++ {
		code, err := g.Generate()
		if err != nil {
			log.Fatalf("Failed to generate code: %v", err)
		}
		fmt.Println(code)
	}
}
