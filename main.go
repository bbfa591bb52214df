package main

import "github.com/raulmdev/jirareport/cmd"

func main() {
	cmd.Execute()
}
