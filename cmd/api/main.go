package main

import (
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"wildbook-backend/pkg/logger"
)

func main() {
	if err := godotenv.Load(); err != nil {
		// production uses real environment variables
	}

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}
	logger.Init(env)

	if env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	Serve()
}
