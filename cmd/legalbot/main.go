package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "🚨 Failed to run legal assistant:", err)
		os.Exit(1)
	}
}
