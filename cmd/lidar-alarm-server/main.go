package main

import "github.com/oshokin/lidar-alarm/cmd/lidar-alarm-server/cmd"

func main() {
	cmd.Execute()
}
