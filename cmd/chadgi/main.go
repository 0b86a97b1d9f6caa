package main

import "github.com/SwapLabsInc/ChadGI-sub003/internal/cli"

func main() {
	cli.Execute()
}
