package config

import (
	"fmt"
	"os"
	"strings"
)

// readSecret читает секрет из файла в стандартном пути Docker Secrets.
func readSecret(secretName string) (string, error) {
	filePath := fmt.Sprintf("/run/secrets/%s", secretName)
	secretBytes, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to read secret file %s: %w", filePath, err)
	}
	secret := strings.TrimSpace(string(secretBytes))
	if secret == "" {
		return "", fmt.Errorf("secret file %s is empty", filePath)
	}
	return secret, nil
}

// readSecretOrEnv сначала пробует Docker Secret, затем переменную окружения.
// Нужен для секретов, которые в локальной разработке задаются через .env.
func readSecretOrEnv(secretName, envName string) (string, error) {
	if secret, err := readSecret(secretName); err == nil {
		return secret, nil
	}
	if val := strings.TrimSpace(os.Getenv(envName)); val != "" {
		return val, nil
	}
	return "", fmt.Errorf("secret %q not found in /run/secrets or env %s", secretName, envName)
}
