package main

import (
	"github.com/axellelanca/visitorpulse/cmd"
	_ "github.com/axellelanca/visitorpulse/cmd/cli"
	_ "github.com/axellelanca/visitorpulse/cmd/server"
)

func main() {
	cmd.Execute()
}
