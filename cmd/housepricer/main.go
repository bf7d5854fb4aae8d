package main

import "github.com/YuminosukeSato/housepricer/internal/cli"

func main() {
	cli.Execute()
}
