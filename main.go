// Package main is the entry point for the drucred CLI.
package main

import "github.com/naka-gawa/drucred/cmd"

func main() {
	cmd.Execute()
}
