package pbirs

import (
	"fmt"
	"log/slog"

	"gopkg.in/yaml.v3"

	"github.com/alcoccoque/pbirs-connector/internal/endpoint"
)

// TemplateID identifies the report server source in the registry.
const TemplateID = "http.pbirs"

// init registers the report server factory with the global registry.
func init() {
	endpoint.Register(TemplateID, func(config map[string]any, logger *slog.Logger) (endpoint.Source, error) {
		cfg, err := ParseConfig(config)
		if err != nil {
			return nil, err
		}
		return New(cfg, logger)
	})
}

// ParseConfig decodes loose configuration (as read from a YAML recipe) into
// a Config. Validation happens when the source is built.
func ParseConfig(raw map[string]any) (*Config, error) {
	data, err := yaml.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("encode source config: %w", err)
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("decode source config: %w", err)
	}
	return cfg, nil
}
