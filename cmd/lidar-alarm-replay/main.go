package main

import "github.com/oshokin/lidar-alarm/cmd/lidar-alarm-replay/cmd"

func main() {
	cmd.Execute()
}
