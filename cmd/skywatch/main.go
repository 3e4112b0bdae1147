package main

import "github.com/curbz/skywatch/internal/cli"

func main() {
	cli.Execute()
}
