package config

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port             int
	DBPath           string
	EncryptionKey    string
	LLMBaseURL       string
	LLMAPIKey        string
	LLMModel         string
	TranslateTimeout time.Duration
	ExecuteTimeout   time.Duration
	ProbeTimeout     time.Duration
	MaxResultRows    int
}

func Load() (*Config, error) {
	// Try loading .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()

	key := os.Getenv("QUERYFORGE_KEY")
	if len(key) < 32 {
		fmt.Println("QUERYFORGE_KEY not found or too short. Generating a new secure key...")
		newKey, err := generateRandomKey(32)
		if err != nil {
			return nil, fmt.Errorf("failed to generate key: %w", err)
		}

		if err := saveKeyToEnv(newKey); err != nil {
			fmt.Printf("Warning: Failed to save generated key to .env: %v\n", err)
		} else {
			fmt.Println("New QUERYFORGE_KEY saved to .env file.")
		}
		key = newKey
	}

	cfg := &Config{
		Port:             envInt("PORT", 8080),
		DBPath:           envString("QUERYFORGE_DB", "queryforge.db"),
		EncryptionKey:    key,
		LLMBaseURL:       envString("LLM_BASE_URL", "https://api.openai.com"),
		LLMAPIKey:        os.Getenv("LLM_API_KEY"),
		LLMModel:         envString("LLM_MODEL", "gpt-4o-mini"),
		TranslateTimeout: envSeconds("TRANSLATE_TIMEOUT_SECONDS", 20),
		ExecuteTimeout:   envSeconds("EXECUTE_TIMEOUT_SECONDS", 30),
		ProbeTimeout:     envSeconds("PROBE_TIMEOUT_SECONDS", 10),
		MaxResultRows:    envInt("MAX_RESULT_ROWS", 500),
	}

	if cfg.LLMAPIKey == "" {
		return nil, fmt.Errorf("LLM_API_KEY is required")
	}
	return cfg, nil
}

func envString(name, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		return v
	}
	return fallback
}

func envInt(name string, fallback int) int {
	if v := os.Getenv(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envSeconds(name string, fallback int) time.Duration {
	return time.Duration(envInt(name, fallback)) * time.Second
}

func generateRandomKey(length int) (string, error) {
	b := make([]byte, length)
	_, err := rand.Read(b)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

func saveKeyToEnv(key string) error {
	filename := ".env"
	content, err := os.ReadFile(filename)
	if os.IsNotExist(err) {
		return os.WriteFile(filename, []byte(fmt.Sprintf("QUERYFORGE_KEY=%s\n", key)), 0644)
	} else if err != nil {
		return err
	}

	lines := strings.Split(string(content), "\n")
	found := false
	newLines := []string{}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "QUERYFORGE_KEY=") {
			newLines = append(newLines, fmt.Sprintf("QUERYFORGE_KEY=%s", key))
			found = true
		} else if trimmed != "" {
			newLines = append(newLines, trimmed)
		}
	}

	if !found {
		newLines = append(newLines, fmt.Sprintf("QUERYFORGE_KEY=%s", key))
	}

	return os.WriteFile(filename, []byte(strings.Join(newLines, "\n")+"\n"), 0644)
}
