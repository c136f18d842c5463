package main

import "github.com/kozaktomas/site-attendance/cmd"

func main() {
	cmd.Execute()
}
