package main

import "github.com/lepinkainen/toplista/cmd"

var execute = cmd.Execute

func main() {
	execute()
}
