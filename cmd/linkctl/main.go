package main

import (
	"github.com/Void-Roleplay/backend/internal/cli"
)

func main() {
	cli.Execute()
}
