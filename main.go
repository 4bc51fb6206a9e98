package main

import "github.com/rnwolfe/exmachina/cmd"

func main() {
	cmd.Execute()
}
