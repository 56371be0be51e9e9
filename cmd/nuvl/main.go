package main

import (
	"fmt"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/fatih/color"
	"github.com/nuvl/nuvlworld/world"
)

// Exit codes
const (
	exitSuccess     = 0
	exitError       = 1
	exitSyntaxError = 2
)

func main() {
	os.Exit(run())
}

func run() int {
	err := rootCmd.Execute()
	err = errors.CombineErrors(err, closeStore())
	if err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error:"), err)
		var syntaxErr *world.SyntaxError
		if errors.As(err, &syntaxErr) {
			return exitSyntaxError
		}
		return exitError
	}
	return exitSuccess
}
