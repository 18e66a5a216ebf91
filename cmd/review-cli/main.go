package main

import "review-core/cmd/review-cli/cmd"

func main() {
	cmd.Execute()
}
