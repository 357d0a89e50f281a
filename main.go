package main

import (
	"prefab-bundler/cli"
)

func main() {
	cli.Start()
}
