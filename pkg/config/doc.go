// Package config loads typed configuration structs from the environment.
//
// It combines github.com/joho/godotenv (optional .env file) with
// github.com/caarlos0/env/v11 (struct tag parsing, defaults, required keys).
// Every package that needs settings declares its own Config struct and the
// application composes them in cmd/server.
package config
