package main

import "github.com/rustyeddy/tradelog/internal/cli"

func main() {
	cli.Execute()
}
