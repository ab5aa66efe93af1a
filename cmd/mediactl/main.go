package main

import "marketmedia/cmd/mediactl/commands"

func main() {
	commands.Execute()
}
