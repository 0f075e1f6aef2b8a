package main

import "github.com/jo-hoe/goimagine/internal/cli"

func main() {
	cli.Execute()
}
