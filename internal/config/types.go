package config

// AppConfig holds runtime startup configuration loaded from YAML.
type AppConfig struct {
	Port           int                   `yaml:"port"`
	DSN            string                `yaml:"dsn"` // MySQL DSN
	RedisURL       string                `yaml:"redis_url"`
	Database       DatabaseRuntimeConfig `yaml:"database"`
	Redis          RedisRuntimeConfig    `yaml:"redis"`
	Env            string                `yaml:"env"` // "development" | "production"
	AllowedOrigins []string              `yaml:"allowed_origins"`
	JWTSecret      string                `yaml:"jwt_secret"`
	Timezone       string                `yaml:"timezone"`
}

type DatabaseRuntimeConfig struct {
	DSN       string            `yaml:"dsn"`
	URL       string            `yaml:"url"`
	Host      string            `yaml:"host"`
	Port      int               `yaml:"port"`
	User      string            `yaml:"user"`
	Username  string            `yaml:"username"`
	Password  string            `yaml:"password"`
	Name      string            `yaml:"name"`
	DBName    string            `yaml:"db_name"`
	Charset   string            `yaml:"charset"`
	ParseTime bool              `yaml:"parse_time"`
	Loc       string            `yaml:"loc"`
	Params    map[string]string `yaml:"params"`
}

type RedisRuntimeConfig struct {
	URL      string            `yaml:"url"`
	Host     string            `yaml:"host"`
	Port     int               `yaml:"port"`
	Username string            `yaml:"username"`
	Password string            `yaml:"password"`
	DB       int               `yaml:"db"`
	TLS      bool              `yaml:"tls"`
	Scheme   string            `yaml:"scheme"`
	Params   map[string]string `yaml:"params"`
}

// FullConfig is the editorial configuration stored in the database
// (options table, key="configs"), editable from the admin dashboard.
type FullConfig struct {
	Site SiteConfig      `json:"site"`
	Desk EditorialConfig `json:"desk"`
	AI   AIConfig        `json:"ai"`
}

type SiteConfig struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Keywords    []string `json:"keywords"`
	WebURL      string   `json:"web_url"`
	AdminURL    string   `json:"admin_url"`
}

type EditorialConfig struct {
	RequireApproval  bool `json:"require_approval"`
	AutoSlugFromDate bool `json:"auto_slug_from_date"`
}

// AIConfig drives the rewrite pipeline: provider pool, key rotation pool,
// quota limits and the double-validation toggle.
type AIConfig struct {
	Providers           []AIProvider       `json:"providers"`
	KeyPool             []AIPoolKey        `json:"key_pool"`
	RewriteModel        *AIModelAssignment `json:"rewrite_model,omitempty"`
	EnableRewrite       bool               `json:"enable_rewrite"`
	DefaultStyle        string             `json:"default_style"`
	DoubleValidation    bool               `json:"double_validation"`
	MaxInputLength      int                `json:"max_input_length"`
	DailyRequestLimit   int                `json:"daily_request_limit"`
	MonthlyTokenBudget  int64              `json:"monthly_token_budget"`
	RewriteSystemPrompt string             `json:"rewrite_system_prompt"`
}

type AIModelAssignment struct {
	ProviderID string `json:"provider_id"`
	Model      string `json:"model"`
}

type AIProvider struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Type         string `json:"type"` // openai | anthropic | gemini
	APIKey       string `json:"api_key"`
	Endpoint     string `json:"endpoint,omitempty"`
	DefaultModel string `json:"default_model"`
	Enabled      bool   `json:"enabled"`
}

// AIPoolKey is one entry of the rotation pool: an interchangeable
// provider API key with a human-readable label for audit logs.
type AIPoolKey struct {
	Secret string `json:"secret"`
	Label  string `json:"label"`
}
