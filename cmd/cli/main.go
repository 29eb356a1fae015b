package main

import (
	"fmt"
	"os"

	"github.com/crucial707/blog-platform/cmd/cli/root"
	_ "github.com/crucial707/blog-platform/cmd/cli/posts"
	_ "github.com/crucial707/blog-platform/cmd/cli/session"
)

func main() {
	// Execute the root Cobra command
	if err := root.GetRoot().Execute(); err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
}
