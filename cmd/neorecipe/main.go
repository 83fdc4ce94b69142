// Command neorecipe serves and manages a recipe catalog stored in Neo4j.
//
//	neorecipe serve                         run the HTTP API
//	neorecipe seed --file catalog.yaml      load a YAML catalog
//	neorecipe match -i 12 -i 40             rank recipes by available ingredients
//	neorecipe verify                        check the database connection
package main

import (
	"context"
	"fmt"
	"os"
)

func main() {
	if err := newApp(os.Stdout).command().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
