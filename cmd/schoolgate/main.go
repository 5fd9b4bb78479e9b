package main

import "github.com/mcoot/schoolgate/internal/cli"

func main() {
	cli.Execute()
}
