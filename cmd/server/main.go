package main

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"agentic-xai/internal/agent"
	"agentic-xai/internal/api"
)

func main() {
	baseDir, err := os.Getwd()
	if err != nil {
		logrus.Fatalf("determine working directory: %v", err)
	}

	dataDir := filepath.Join(baseDir, "data")
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		logrus.Fatalf("create data directory: %v", err)
	}

	aiCfg := agent.Config{
		Vendor:  os.Getenv("AI_PROVIDER"),
		APIKey:  os.Getenv("AI_API_KEY"),
		Model:   os.Getenv("AI_MODEL"),
		BaseURL: os.Getenv("AI_BASE_URL"),
	}
	if temp := os.Getenv("AI_TEMPERATURE"); temp != "" {
		if v, err := strconv.ParseFloat(temp, 64); err == nil {
			aiCfg.Temperature = v
		}
	}
	if maxTokens := os.Getenv("AI_MAX_TOKENS"); maxTokens != "" {
		if v, err := strconv.Atoi(maxTokens); err == nil {
			aiCfg.MaxTokens = v
		}
	}
	if timeout := os.Getenv("AI_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil {
			aiCfg.Timeout = d
		}
	}

	var allowedOrigins []string
	if origins := strings.TrimSpace(os.Getenv("ALLOWED_ORIGINS")); origins != "" {
		for _, origin := range strings.Split(origins, ",") {
			if trimmed := strings.TrimSpace(origin); trimmed != "" {
				allowedOrigins = append(allowedOrigins, trimmed)
			}
		}
	}

	cfg := api.Config{
		DBPath:         filepath.Join(dataDir, "decisions.db"),
		AllowedOrigins: allowedOrigins,
		AIConfig:       aiCfg,
		DisableAI:      strings.EqualFold(strings.TrimSpace(os.Getenv("DISABLE_AI")), "true"),
	}
	if override := strings.TrimSpace(os.Getenv("DECISION_DB_PATH")); override != "" {
		cfg.DBPath = override
	}

	server, err := api.NewServer(cfg)
	if err != nil {
		logrus.Fatalf("create server: %v", err)
	}

	router, err := server.Router()
	if err != nil {
		logrus.Fatalf("configure router: %v", err)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "2000"
	}

	logrus.Infof("starting agentic-xai backend on :%s", port)
	if err := router.Run(":" + port); err != nil {
		logrus.Fatalf("server exited: %v", err)
	}
}
