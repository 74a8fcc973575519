package types

// AppConfig represents the complete application configuration
type AppConfig struct {
	Verbose  bool           `mapstructure:"verbose"`
	Config   string         `mapstructure:"config"`
	Project  ProjectConfig  `mapstructure:"project" validate:"required"`
	Data     DataConfig     `mapstructure:"data" validate:"required"`
	LLM      LLMConfig      `mapstructure:"llm" validate:"omitempty"`
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Reminder ReminderConfig `mapstructure:"reminder" validate:"omitempty"`
}

// ProjectConfig holds project-related settings
type ProjectConfig struct {
	RootDir      string `mapstructure:"rootDir" validate:"required"`
	DataDir      string `mapstructure:"dataDir" validate:"required"`
	TemplatesDir string `mapstructure:"templatesDir" validate:"required"`
}

// DataConfig holds data storage configuration
type DataConfig struct {
	File   string `mapstructure:"file" validate:"required"`
	Format string `mapstructure:"format" validate:"required,oneof=json yaml toml"`
}

// LLMConfig holds configuration for the summarization collaborator
type LLMConfig struct {
	Provider  string `mapstructure:"provider" validate:"omitempty,oneof=gemini openai anthropic ollama"`
	ModelName string `mapstructure:"modelName" validate:"omitempty,min=1"`
	APIKey    string `mapstructure:"apiKey" validate:"omitempty,min=1"`
	BaseURL   string `mapstructure:"baseURL" validate:"omitempty,url"`
	// RequestTimeoutSeconds controls the context deadline for summary calls
	RequestTimeoutSeconds int `mapstructure:"requestTimeoutSeconds" validate:"omitempty,min=5,max=600"`
}

// ServerConfig holds the HTTP API settings
type ServerConfig struct {
	Port int `mapstructure:"port" validate:"required,min=1,max=65535"`
}

// ReminderConfig holds the upcoming-scrum reminder settings
type ReminderConfig struct {
	Enabled         bool `mapstructure:"enabled"`
	WindowMinutes   int  `mapstructure:"windowMinutes" validate:"omitempty,min=1"`
	IntervalSeconds int  `mapstructure:"intervalSeconds" validate:"omitempty,min=1"`
}
