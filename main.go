package main

import "github.com/notargets/gofunctional/cmd"

func main() {
	cmd.Execute()
}
