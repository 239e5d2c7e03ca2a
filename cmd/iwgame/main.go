package main

import "github.com/mcoot/invisiblewalls/internal/cli"

func main() {
	cli.Execute()
}
