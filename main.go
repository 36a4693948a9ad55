package main

import "github.com/naka-gawa/pr-leaderboard/cmd"

func main() {
	cmd.Execute()
}
