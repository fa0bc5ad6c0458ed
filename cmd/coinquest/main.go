package main

import "github.com/coinquest/coinquest/internal/cli"

func main() {
	cli.Execute()
}
