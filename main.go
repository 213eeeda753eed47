package main

import "github.com/egobogo/notionrag/cmd"

func main() {
	cmd.Execute()
}
