package main

import "github.com/ewilliams-labs/moodweather/internal/cli"

func main() {
	cli.Execute()
}
