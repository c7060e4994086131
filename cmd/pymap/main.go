package main

import "github.com/mvp-joe/pymap/internal/cli"

func main() {
	cli.Execute()
}
