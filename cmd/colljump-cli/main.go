package main

import "colljump/cmd/colljump-cli/cmd"

func main() {
	cmd.Execute()
}
