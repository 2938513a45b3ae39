package main

import "github.com/yungbote/deckforge-backend/internal/cli"

func main() {
	cli.Execute()
}
