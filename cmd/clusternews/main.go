package main

import (
	"clusternews/cmd/handlers"
	"clusternews/internal/logger"
)

func main() {
	logger.Init() // Initialize the logger
	handlers.Execute()
}
