package providers

import (
	"github.com/aikata-dev/aikata/pkg/config"
)

// CreateProvider resolves a configured provider name into a client.
// Anything that is not claude is treated as OpenAI-compatible.
func CreateProvider(name string, cfg *config.Config) LLMProvider {
	pc := cfg.Provider(name)
	if name == "claude" {
		return NewClaudeProvider(pc.APIKey, pc.APIBase)
	}
	return NewHTTPProvider(pc.APIKey, pc.APIBase, pc.Proxy)
}
