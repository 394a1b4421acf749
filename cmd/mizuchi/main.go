package main

import (
	"os"

	"mizuchi/cmd/mizuchi/commands"
)

// @title           Mizuchi API
// @version         1.0
// @description     Irrigation consortium shift scheduling service.

// @host      localhost:8000
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
