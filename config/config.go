package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Telegram configuration
	TelegramToken string

	// Database configuration
	DatabaseURL string

	// Game configuration
	SuperAdminIDs   []int64 // Telegram IDs with permanent admin rights
	LeaderboardSize int

	// Reminder window: matches kicking off between MinLead and MaxLead
	// from now get one kickoff reminder
	ReminderMinLead time.Duration
	ReminderMaxLead time.Duration

	// HTTP status server
	HTTPAddr string

	// Environment
	Environment string // "development" or "production"
}

var (
	instance *Config
	once     sync.Once
)

// Get returns the global configuration instance
func Get() *Config {
	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
	})
	return instance
}

// load loads configuration from environment variables
func load() (*Config, error) {
	config := &Config{
		TelegramToken: os.Getenv("TELEGRAM_TOKEN"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),

		// Defaults
		LeaderboardSize: 10,
		ReminderMinLead: 5 * time.Minute,
		ReminderMaxLead: time.Hour,
		HTTPAddr:        ":8080",

		Environment: os.Getenv("ENVIRONMENT"),
	}

	if size := os.Getenv("LEADERBOARD_SIZE"); size != "" {
		if parsed, err := strconv.Atoi(size); err == nil && parsed > 0 {
			config.LeaderboardSize = parsed
		}
	}
	if lead := os.Getenv("REMINDER_MIN_LEAD"); lead != "" {
		if parsed, err := time.ParseDuration(lead); err == nil {
			config.ReminderMinLead = parsed
		}
	}
	if lead := os.Getenv("REMINDER_MAX_LEAD"); lead != "" {
		if parsed, err := time.ParseDuration(lead); err == nil {
			config.ReminderMaxLead = parsed
		}
	}
	if addr := os.Getenv("HTTP_ADDR"); addr != "" {
		config.HTTPAddr = addr
	}

	// Parse super admin Telegram IDs
	if adminIDs := os.Getenv("SUPER_ADMIN_IDS"); adminIDs != "" {
		idStrings := strings.Split(adminIDs, ",")
		for _, idStr := range idStrings {
			idStr = strings.TrimSpace(idStr)
			if idStr != "" {
				if id, err := strconv.ParseInt(idStr, 10, 64); err == nil {
					config.SuperAdminIDs = append(config.SuperAdminIDs, id)
				}
			}
		}
	}

	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		if config.TelegramToken == "" {
			return nil, fmt.Errorf("TELEGRAM_TOKEN is required")
		}
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
	}

	return config, nil
}
