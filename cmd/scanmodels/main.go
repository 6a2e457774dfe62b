// Command scanmodels rebuilds the model asset manifest for a public
// directory without starting the server.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"culturewalk.ai/internal/manifest"
)

func main() {
	publicDir := flag.String("public", "./public", "public asset directory (models under <public>/models)")
	silent := flag.Bool("silent", false, "suppress per-file output")
	flag.Parse()

	m, err := manifest.Scan(*publicDir, time.Now())
	if err != nil {
		fmt.Fprintln(os.Stderr, "scan:", err)
		os.Exit(1)
	}
	if err := manifest.Write(*publicDir, m); err != nil {
		fmt.Fprintln(os.Stderr, "write:", err)
		os.Exit(1)
	}
	if !*silent {
		for _, f := range m.Files {
			fmt.Println(f)
		}
	}
	fmt.Printf("manifest: %d files (updated %s)\n", len(m.Files), m.UpdatedAt)
}
