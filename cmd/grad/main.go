// Package main provides the grad engine CLI.
package main

import (
	"fmt"
	"os"
)

const version = "v0.0.1-dev"

func main() {
	if len(os.Args) > 1 && os.Args[1] == "version" {
		fmt.Printf("grad autodiff engine %s\n", version)
		return
	}

	fmt.Println("grad - Differentiable Tensor Operations for Go")
	fmt.Printf("Version: %s\n\n", version)
	fmt.Println("Commands:")
	fmt.Println("  version    Show version")
	fmt.Println("")
	fmt.Println("See examples/autodiff-basics for a runnable walkthrough.")
}
