package main

import (
	"fmt"
	"os"

	"kaizen/cmd"
)

// osExit is a var so tests can intercept process termination.
var osExit = os.Exit

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Println(err)
		osExit(1)
	}
}
