package config

import (
	"encoding/base64"
	"fmt"
)

type Config struct {
	ServerAddr    string
	DatabaseDSN   string
	SigningKey    []byte
	TemplateDir   string
	MigrationsDir string
}

func decodeSigningSecret(base64Secret string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(base64Secret)
}

func NewConfig(serverAddr, databaseDSN, base64Secret, templateDir, migrationsDir string) (*Config, error) {
	if serverAddr == "" {
		return nil, fmt.Errorf("server address cannot be empty")
	}
	if databaseDSN == "" {
		return nil, fmt.Errorf("database DSN cannot be empty")
	}
	if base64Secret == "" {
		return nil, fmt.Errorf("signing secret cannot be empty")
	}
	if templateDir == "" {
		return nil, fmt.Errorf("template directory cannot be empty")
	}

	signingKey, err := decodeSigningSecret(base64Secret)
	if err != nil {
		return nil, fmt.Errorf("decode signing secret: %w", err)
	}

	return &Config{
		ServerAddr:    serverAddr,
		DatabaseDSN:   databaseDSN,
		SigningKey:    signingKey,
		TemplateDir:   templateDir,
		MigrationsDir: migrationsDir,
	}, nil
}
