package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	APIBaseURL  string
	Port        string
	JWTSecret   string
	SessionFile string
}

func LoadConfig() Config {
	err := godotenv.Load()
	if err != nil {
		log.Println(".env not found, using defaults")
	}

	apiURL := os.Getenv("API_URL")
	if apiURL == "" {
		apiURL = "http://localhost:8080/api"
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	sessionFile := os.Getenv("SESSION_FILE")
	if sessionFile == "" {
		sessionFile = "session.json"
	}

	return Config{
		APIBaseURL:  apiURL,
		Port:        port,
		JWTSecret:   os.Getenv("JWT_SECRET"),
		SessionFile: sessionFile,
	}
}
