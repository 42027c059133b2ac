package main

import (
	"github.com/joho/godotenv"

	"github.com/kailas-cloud/shopsearch/internal/cli"
)

func main() {
	_ = godotenv.Load()
	cli.Execute()
}
