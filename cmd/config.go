/*
Copyright © 2025 Mardromus
*/
package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/mardromus/scrumdinger/internal/llm"
	"github.com/mardromus/scrumdinger/types"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	configName = ".scrumdinger"
	envPrefix  = "SCRUMDINGER"
)

// GlobalAppConfig holds the global application configuration instance.
var GlobalAppConfig types.AppConfig

// validate caches struct info for config validation.
var validate *validator.Validate

func init() {
	validate = validator.New()
}

// validateAppConfig performs validation on the AppConfig struct.
func validateAppConfig(config *types.AppConfig) error {
	return validate.Struct(config)
}

// InitConfig reads in config file and ENV variables if set.
func InitConfig() {
	// Load .env file first if present; absence is fine.
	_ = godotenv.Load()

	viper.SetEnvPrefix(envPrefix) // e.g., SCRUMDINGER_VERBOSE
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfgFileFlag := viper.GetString("config")

	projectConfigDir := viper.GetString("project.rootDir")
	if projectConfigDir == "" {
		projectConfigDir = ".scrumdinger"
	}

	if cfgFileFlag != "" {
		viper.SetConfigFile(cfgFileFlag)
	} else {
		if _, err := os.Stat(projectConfigDir); !os.IsNotExist(err) {
			// Project-specific config directory exists. Prioritize it.
			viper.AddConfigPath(projectConfigDir)
			viper.SetConfigName(configName)
		} else {
			home, err := os.UserHomeDir()
			cobra.CheckErr(err)
			viper.AddConfigPath(home)
			viper.AddConfigPath(".")
			viper.SetConfigName(configName)
		}
	}

	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool("verbose") {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	} else {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			if cfgFileFlag != "" {
				fmt.Fprintln(os.Stderr, "Error: Specified config file not found:", cfgFileFlag)
			} else if viper.GetBool("verbose") {
				fmt.Fprintln(os.Stderr, "No config file found. Using defaults and environment variables.")
			}
		} else {
			fmt.Fprintln(os.Stderr, "Error reading config file:", viper.ConfigFileUsed(), "-", err)
		}
	}

	// Set default values
	viper.SetDefault("project.rootDir", ".scrumdinger")
	viper.SetDefault("project.dataDir", "data")
	viper.SetDefault("project.templatesDir", "templates")
	viper.SetDefault("data.file", "scrums.json")
	viper.SetDefault("data.format", "json")

	viper.SetDefault("llm.provider", llm.DefaultProvider)
	viper.SetDefault("llm.modelName", llm.DefaultGeminiModel)
	viper.SetDefault("llm.apiKey", "")
	viper.SetDefault("llm.requestTimeoutSeconds", 120)

	viper.SetDefault("server.port", 8585)

	viper.SetDefault("reminder.enabled", true)
	viper.SetDefault("reminder.windowMinutes", 15)
	viper.SetDefault("reminder.intervalSeconds", 60)

	if err := viper.Unmarshal(&GlobalAppConfig); err != nil {
		fmt.Fprintf(os.Stderr, "Error unmarshaling config: %s\n", err)
		os.Exit(1)
	}

	// API key fallbacks from common provider env vars.
	if GlobalAppConfig.LLM.APIKey == "" {
		for _, envVar := range []string{"GEMINI_API_KEY", "GOOGLE_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY"} {
			if v := os.Getenv(envVar); v != "" {
				GlobalAppConfig.LLM.APIKey = v
				break
			}
		}
	}

	if err := validateAppConfig(&GlobalAppConfig); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration validation error: %s\n", err)
		os.Exit(1)
	}
}

// GetConfig returns a pointer to the global types.AppConfig instance.
func GetConfig() *types.AppConfig {
	return &GlobalAppConfig
}

// LLMClientConfig translates the app configuration into an llm.Config,
// filling in the provider's default model when none is set.
func LLMClientConfig() llm.Config {
	config := GetConfig()
	provider := config.LLM.Provider
	if provider == "" {
		provider = llm.DefaultProvider
	}
	model := config.LLM.ModelName
	if model == "" {
		model = llm.DefaultModelForProvider(provider)
	}
	return llm.Config{
		Provider:       llm.Provider(provider),
		Model:          model,
		APIKey:         config.LLM.APIKey,
		BaseURL:        config.LLM.BaseURL,
		RequestTimeout: time.Duration(config.LLM.RequestTimeoutSeconds) * time.Second,
	}
}
