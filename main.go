package main

import "github.com/dipjyotimetia/pubsub-client/internal/cli"

func main() {
	cli.Execute()
}
