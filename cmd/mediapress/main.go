package main

import "mediapress/internal/cli"

func main() {
	cli.Execute()
}
