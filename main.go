package main

import "yt-audio-clipper/cmd"

func main() {
	cmd.Execute()
}
