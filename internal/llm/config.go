package llm

// ProtocolType tags the wire dialect a vendor speaks. Dialects are statically
// configured, never negotiated or inferred at runtime.
type ProtocolType string

const (
	ProtocolOpenAI    ProtocolType = "openai"
	ProtocolAnthropic ProtocolType = "anthropic"
)

// AuthType tags how the resolved credential is attached to a request.
type AuthType string

const (
	// AuthBearer sends `Authorization: Bearer <token>`.
	AuthBearer AuthType = "bearer"
	// AuthAPIKeyHeader sends the token in an `x-api-key` header (Anthropic).
	AuthAPIKeyHeader AuthType = "api-key-header"
)

// ProviderConfig is the static per-vendor description. It is immutable after
// construction and owned by its Provider.
type ProviderConfig struct {
	ID       string       `json:"id" yaml:"id" mapstructure:"id" validate:"required"`
	Type     string       `json:"type" yaml:"type" mapstructure:"type" validate:"required"`
	Name     string       `json:"name" yaml:"name" mapstructure:"name"`
	Protocol ProtocolType `json:"protocol" yaml:"protocol" mapstructure:"protocol" validate:"omitempty,oneof=openai anthropic"`

	// BaseURL is the default endpoint. The optional tiers below take
	// precedence when configured, capability-flagged and enabled at runtime.
	BaseURL              string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`
	CodingBaseURL        string `json:"coding_base_url" yaml:"coding_base_url" mapstructure:"coding_base_url"`
	InternationalBaseURL string `json:"international_base_url" yaml:"international_base_url" mapstructure:"international_base_url"`

	// APIKeyName is the settings key holding this vendor's secret.
	APIKeyName string   `json:"api_key_name" yaml:"api_key_name" mapstructure:"api_key_name"`
	AuthType   AuthType `json:"auth_type" yaml:"auth_type" mapstructure:"auth_type"`

	SupportsOAuth         bool `json:"supports_oauth" yaml:"supports_oauth" mapstructure:"supports_oauth"`
	SupportsCodingPlan    bool `json:"supports_coding_plan" yaml:"supports_coding_plan" mapstructure:"supports_coding_plan"`
	SupportsInternational bool `json:"supports_international" yaml:"supports_international" mapstructure:"supports_international"`

	// Headers are vendor-level default headers merged over dialect defaults.
	Headers map[string]string `json:"headers" yaml:"headers" mapstructure:"headers"`
	// ExtraBody fields are merged into every request body for this vendor.
	ExtraBody map[string]interface{} `json:"extra_body" yaml:"extra_body" mapstructure:"extra_body"`

	Enabled bool `json:"enabled" yaml:"enabled" mapstructure:"enabled"`

	Models []ModelConfig `json:"models" yaml:"models" mapstructure:"models"`
}

// ModelConfig maps a public model id to the vendor's own id.
type ModelConfig struct {
	ID         string `json:"id" yaml:"id" mapstructure:"id"`
	Name       string `json:"name" yaml:"name" mapstructure:"name"`
	UpstreamID string `json:"upstream_id" yaml:"upstream_id" mapstructure:"upstream_id"`
}

// Upstream returns the id to send to the vendor.
func (m ModelConfig) Upstream() string {
	if m.UpstreamID != "" {
		return m.UpstreamID
	}
	return m.ID
}
