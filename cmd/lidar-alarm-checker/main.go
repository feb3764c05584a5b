package main

import "github.com/oshokin/lidar-alarm/cmd/lidar-alarm-checker/cmd"

func main() {
	cmd.Execute()
}
