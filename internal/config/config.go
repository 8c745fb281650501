package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
)

// Config aggregates every setting the engine reads at startup.
type Config struct {
	Server    ServerConfig
	Ledger    LedgerConfig
	Messaging MessagingConfig
	Routing   RoutingConfig
	AI        AIConfig
}

// Load reads the configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	ledger, err := loadLedgerConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server:    server,
		Ledger:    ledger,
		Messaging: loadMessagingConfig(),
		Routing:   loadRoutingConfig(),
		AI:        ai,
	}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "3000"
	}

	if strings.Contains(port, ":") {
		// Accept ":3000" or "127.0.0.1:3000" as-is.
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// LedgerConfig locates the tabular record store.
type LedgerConfig struct {
	BaseURL       string
	SpreadsheetID string
	Token         string
	Timeout       time.Duration
}

// Enabled reports whether the external store is configured; without it the
// engine runs against the in-memory store.
func (c LedgerConfig) Enabled() bool {
	return c.BaseURL != "" && c.SpreadsheetID != ""
}

func loadLedgerConfig() (LedgerConfig, error) {
	timeout, err := parseOptionalIntEnv("LEDGER_TIMEOUT_SECONDS")
	if err != nil {
		return LedgerConfig{}, err
	}
	timeoutSeconds := 10
	if timeout != nil {
		timeoutSeconds = *timeout
	}

	return LedgerConfig{
		BaseURL:       getEnvOrDefault("LEDGER_BASE_URL", "https://sheets.googleapis.com"),
		SpreadsheetID: strings.TrimSpace(os.Getenv("LEDGER_SPREADSHEET_ID")),
		Token:         strings.TrimSpace(os.Getenv("LEDGER_TOKEN")),
		Timeout:       time.Duration(timeoutSeconds) * time.Second,
	}, nil
}

// MessagingConfig carries the telephony/messaging provider credentials.
type MessagingConfig struct {
	BaseURL        string
	AccountSID     string
	AuthToken      string
	WhatsAppNumber string
}

// Enabled reports whether outbound sending is configured.
func (c MessagingConfig) Enabled() bool {
	return c.AccountSID != "" && c.AuthToken != ""
}

func loadMessagingConfig() MessagingConfig {
	return MessagingConfig{
		BaseURL:        getEnvOrDefault("TWILIO_BASE_URL", "https://api.twilio.com"),
		AccountSID:     strings.TrimSpace(os.Getenv("TWILIO_ACCOUNT_SID")),
		AuthToken:      strings.TrimSpace(os.Getenv("TWILIO_AUTH_TOKEN")),
		WhatsAppNumber: strings.TrimSpace(os.Getenv("TWILIO_WHATSAPP_NUMBER")),
	}
}

// RoutingConfig lists the IVR transfer targets.
type RoutingConfig struct {
	RezervariPhone string
	InfoPhone      string
	AgentPhone     string
	MenuAction     string
}

func loadRoutingConfig() RoutingConfig {
	return RoutingConfig{
		RezervariPhone: strings.TrimSpace(os.Getenv("REZERVARI_PHONE")),
		InfoPhone:      strings.TrimSpace(os.Getenv("INFO_PHONE")),
		AgentPhone:     strings.TrimSpace(os.Getenv("AGENT_PHONE")),
		MenuAction:     getEnvOrDefault("MENU_ACTION", "/voice/menu"),
	}
}

// AIConfig describes the classification model.
type AIConfig struct {
	APIKey      string
	AccessKey   string
	SecretKey   string
	Model       string
	BaseURL     string
	Region      string
	Temperature *float64
	TopP        *float64
	MaxTokens   *int
	Timeout     time.Duration
}

// Enabled reports whether the required model credentials are present.
func (c AIConfig) Enabled() bool {
	return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// NewChatModel creates a model instance from the configuration.
func (c AIConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("classifier credentials missing: provide ARK_API_KEY + ARK_MODEL or AK/SK")
	}

	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
	}

	var topP *float32
	if c.TopP != nil {
		val := float32(*c.TopP)
		topP = &val
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       c.Model,
		MaxTokens:   c.MaxTokens,
		Temperature: temperature,
		TopP:        topP,
	}

	return ark.NewChatModel(ctx, cfg)
}

func loadAIConfig() (AIConfig, error) {
	temperature, err := parseOptionalFloatEnv("ARK_TEMPERATURE")
	if err != nil {
		return AIConfig{}, err
	}

	topP, err := parseOptionalFloatEnv("ARK_TOP_P")
	if err != nil {
		return AIConfig{}, err
	}

	maxTokens, err := parseOptionalIntEnv("ARK_MAX_TOKENS")
	if err != nil {
		return AIConfig{}, err
	}

	timeout, err := parseOptionalIntEnv("CLASSIFIER_TIMEOUT_SECONDS")
	if err != nil {
		return AIConfig{}, err
	}
	timeoutSeconds := 15
	if timeout != nil {
		timeoutSeconds = *timeout
	}

	return AIConfig{
		APIKey:      strings.TrimSpace(os.Getenv("ARK_API_KEY")),
		AccessKey:   strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
		SecretKey:   strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
		Model:       strings.TrimSpace(os.Getenv("ARK_MODEL")),
		BaseURL:     getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
		Region:      getEnvOrDefault("ARK_REGION", "cn-beijing"),
		Temperature: temperature,
		TopP:        topP,
		MaxTokens:   maxTokens,
		Timeout:     time.Duration(timeoutSeconds) * time.Second,
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
