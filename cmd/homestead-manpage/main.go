package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra/doc"

	"github.com/arthur-debert/homestead/cmd/homestead"
	"github.com/arthur-debert/homestead/internal/version"
)

func main() {
	rootCmd := homestead.NewRootCmd()

	header := &doc.GenManHeader{
		Title:   "HOMESTEAD",
		Section: "1",
		Source:  "homestead " + version.Version,
		Manual:  "homestead manual",
	}

	if err := doc.GenMan(rootCmd, header, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error generating man page: %v\n", err)
		os.Exit(1)
	}
}
