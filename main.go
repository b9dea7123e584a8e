package main

import "github.com/lastgram/lastgram/cmd"

func main() {
	cmd.Execute()
}
