package main

import "github.com/tanq16/rangedl/cmd"

func main() {
	cmd.Execute()
}
