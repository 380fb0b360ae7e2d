package main

import "wheelhouse/cmd"

func main() {
	cmd.Execute()
}
