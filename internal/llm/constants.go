package llm

// Provider constants
const (
	// DefaultProvider is the default LLM provider. The meeting summarizer
	// was built against Gemini, so it stays the default.
	DefaultProvider = ProviderGemini

	// ProviderGemini represents the Google Gemini provider
	ProviderGemini = "gemini"

	// ProviderOpenAI represents the OpenAI provider
	ProviderOpenAI = "openai"

	// ProviderAnthropic represents the Anthropic provider
	ProviderAnthropic = "anthropic"

	// ProviderOllama represents the Ollama provider
	ProviderOllama = "ollama"
)

// Default model constants for each provider
const (
	// DefaultGeminiModel is the default model for the Gemini provider
	DefaultGeminiModel = "gemini-2.5-flash"

	// DefaultOpenAIModel is the default model for the OpenAI provider
	DefaultOpenAIModel = "gpt-4o-mini"

	// DefaultAnthropicModel is the default model for the Anthropic provider
	DefaultAnthropicModel = "claude-haiku-4-5"

	// DefaultOllamaModel is the default model for the Ollama provider
	DefaultOllamaModel = "llama3.2"
)

// DefaultOllamaURL is the default URL for Ollama server
const DefaultOllamaURL = "http://localhost:11434"

// DefaultModelForProvider returns the default model for a given provider string.
func DefaultModelForProvider(provider string) string {
	switch provider {
	case ProviderGemini:
		return DefaultGeminiModel
	case ProviderOpenAI:
		return DefaultOpenAIModel
	case ProviderAnthropic:
		return DefaultAnthropicModel
	case ProviderOllama:
		return DefaultOllamaModel
	default:
		return ""
	}
}
