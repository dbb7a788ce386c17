package main

import "github.com/rodydavis/redirectgen/cmd"

func main() {
	cmd.Execute()
}
