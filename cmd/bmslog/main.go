// Command bmslog analyzes BMS log files from the command line.
package main

import "github.com/JonMunkholm/bmsview/internal/cli"

func main() {
	cli.Execute()
}
