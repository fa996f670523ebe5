package main

import "github.com/codemarks/codemarks/internal/cli"

func main() {
	cli.Execute()
}
