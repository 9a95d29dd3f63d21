package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/AI2HU/bizreview/internal/config"
	"github.com/AI2HU/bizreview/internal/logger"
	"github.com/AI2HU/bizreview/internal/secrets"
)

// validateProvider validates the database provider input
func validateProvider(input string) (string, error) {
	input = strings.ToLower(strings.TrimSpace(input))
	switch input {
	case "cloudsql", "mysql", "sqlite":
		return input, nil
	default:
		return "", fmt.Errorf("invalid provider: %s (must be cloudsql, mysql or sqlite)", input)
	}
}

// validatePort validates port input
func validatePort(input string) (string, error) {
	input = strings.TrimSpace(input)
	port, err := strconv.Atoi(input)
	if err != nil || port < 1 || port > 65535 {
		return "", fmt.Errorf("invalid port: %s (must be a number between 1 and 65535)", input)
	}
	return input, nil
}

// validateInstanceConnectionName validates a Cloud SQL instance connection name
func validateInstanceConnectionName(input string) (string, error) {
	input = strings.TrimSpace(input)
	if !config.ValidInstanceConnectionName(input) {
		return "", fmt.Errorf("invalid instance connection name: %s (expected project:region:instance)", input)
	}
	return input, nil
}

// validateSecretName validates an optional Secret Manager version name
func validateSecretName(input string) (string, error) {
	input = strings.TrimSpace(input)
	if input != "" && !secrets.ValidVersionName(input) {
		return "", fmt.Errorf("invalid secret: %s (expected projects/PROJECT/secrets/NAME/versions/VERSION)", input)
	}
	return input, nil
}

// validateLogLevel validates log level input
func validateLogLevel(input string) (string, error) {
	input = strings.ToUpper(strings.TrimSpace(input))
	if input == "WARN" {
		input = "WARNING"
	}
	if input != logger.ParseLogLevel(input).String() {
		return "", fmt.Errorf("invalid log level: %s (must be DEBUG, INFO, WARNING or ERROR)", input)
	}
	return input, nil
}
