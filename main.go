package main

import "npc-localizer/internal/cli"

func main() {
	cli.Execute()
}
