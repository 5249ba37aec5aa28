package main

import "trident/cmd/verify/cli"

func main() {
	cli.Execute()
}
