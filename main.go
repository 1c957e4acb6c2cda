package main

import (
	"fmt"
	"os"

	"textkit/app"
	"textkit/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %s: %v; using defaults\n", config.ConfigPath(), err)
		cfg = config.Default()
	}

	files := os.Args[1:]

	// A directory argument becomes the working directory.
	if len(files) > 0 {
		if info, err := os.Stat(files[0]); err == nil && info.IsDir() {
			if err := os.Chdir(files[0]); err != nil {
				fmt.Fprintf(os.Stderr, "error: cannot change to directory %s: %v\n", files[0], err)
				os.Exit(1)
			}
			files = files[1:]
		}
	}

	if err := app.New(cfg).Run(files); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
