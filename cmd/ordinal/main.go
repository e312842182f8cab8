package main

import "github.com/onemodel/ordinal/internal/cli"

func main() {
	cli.Execute()
}
