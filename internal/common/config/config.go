package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig               `mapstructure:"app"`
	API           APIConfig               `mapstructure:"api"`
	Camunda       CamundaConfig           `mapstructure:"camunda"`
	Database      DatabaseConfig          `mapstructure:"database"`
	Workers       map[string]WorkerConfig `mapstructure:"workers"`
	Auth          AuthConfig              `mapstructure:"auth"`
	Integrations  IntegrationConfig       `mapstructure:"integrations"`
	AI            AIConfig                `mapstructure:"ai"`
	Scheduling    SchedulingConfig        `mapstructure:"scheduling"`
	Sourcing      SourcingConfig          `mapstructure:"sourcing"`
	Assessments   AssessmentConfig        `mapstructure:"assessments"`
	LMS           LMSConfig               `mapstructure:"lms"`
	Logging       LoggingConfig           `mapstructure:"logging"`
	Notifications NotificationConfig      `mapstructure:"notifications"`
	Observability ObservabilityConfig     `mapstructure:"observability"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// APIConfig holds settings for the REST API server.
type APIConfig struct {
	ListenAddress  string `mapstructure:"listen_address"`
	ReadTimeout    int    `mapstructure:"read_timeout"`    // milliseconds
	WriteTimeout   int    `mapstructure:"write_timeout"`   // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
	MaxBodyBytes   int64  `mapstructure:"max_body_bytes"`
	RateLimit      struct {
		Enabled  bool `mapstructure:"enabled"`
		Requests int  `mapstructure:"requests"`
		WindowMS int  `mapstructure:"window_ms"`
	} `mapstructure:"rate_limit"`
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses  []string `mapstructure:"addresses"`
	Username   string   `mapstructure:"username"`
	Password   string   `mapstructure:"password"`
	SSLEnabled bool     `mapstructure:"ssl_enabled"`
	LeadIndex  string   `mapstructure:"lead_index"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"`     // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"` // For error handling
}

// AuthConfig holds settings for bearer-token validation.
type AuthConfig struct {
	Mode string `mapstructure:"mode"` // "keycloak" or "local"

	Keycloak struct {
		URL          string `mapstructure:"url"`
		Realm        string `mapstructure:"realm"`
		ClientID     string `mapstructure:"client_id"`
		ClientSecret string `mapstructure:"client_secret"`
	} `mapstructure:"keycloak"`

	Local struct {
		Secret string `mapstructure:"secret"`
	} `mapstructure:"local"`
}

// IntegrationConfig holds settings for email, SMS and other external services.
type IntegrationConfig struct {
	AWS struct {
		Region string `mapstructure:"region"`
		SES    struct {
			Enabled   bool   `mapstructure:"enabled"`
			FromEmail string `mapstructure:"from_email"`
		} `mapstructure:"ses"`
		SNS struct {
			Enabled            bool   `mapstructure:"enabled"`
			DefaultSMSSenderID string `mapstructure:"default_sms_sender_id"`
		} `mapstructure:"sns"`
	} `mapstructure:"aws"`

	SMTP struct {
		Host        string `mapstructure:"host"`
		Port        int    `mapstructure:"port"`
		Username    string `mapstructure:"username"`
		Password    string `mapstructure:"password"`
		UseTLS      bool   `mapstructure:"use_tls"`
		DefaultFrom string `mapstructure:"default_from"`
	} `mapstructure:"smtp"`
}

// AIConfig holds settings for the LLM-backed generation endpoints.
type AIConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float32 `mapstructure:"temperature"`
	Timeout     int     `mapstructure:"timeout"` // milliseconds
}

// SchedulingConfig holds interview slot and reminder settings.
type SchedulingConfig struct {
	DailySlots       []string `mapstructure:"daily_slots"` // "HH:MM" local times
	SlotMinutes      int      `mapstructure:"slot_minutes"`
	LookaheadDays    int      `mapstructure:"lookahead_days"`
	ReminderCronSpec string   `mapstructure:"reminder_cron_spec"`
	ReminderWindowH  int      `mapstructure:"reminder_window_hours"`
}

// SourcingConfig holds talent discovery scraper settings.
type SourcingConfig struct {
	Platforms   []string `mapstructure:"platforms"`
	Query       string   `mapstructure:"query"`
	Location    string   `mapstructure:"location"`
	MaxProfiles int      `mapstructure:"max_profiles"`
	CronSpec    string   `mapstructure:"cron_spec"`
	DelayMS     int      `mapstructure:"delay_ms"`
}

// AssessmentConfig holds assessment template registry and proctoring settings.
type AssessmentConfig struct {
	RegistryPath string         `mapstructure:"registry_path"`
	Proctoring   map[string]int `mapstructure:"proctoring_penalties"` // event type -> penalty points
}

// LMSIntegration describes one configured learning-platform connector.
type LMSIntegration struct {
	Name    string `mapstructure:"name" json:"name"`
	Kind    string `mapstructure:"kind" json:"kind"` // "scorm", "webhook", "link"
	BaseURL string `mapstructure:"base_url" json:"baseUrl"`
	Enabled bool   `mapstructure:"enabled" json:"enabled"`
}

// LMSConfig holds the onboarding learning-platform connectors.
type LMSConfig struct {
	Integrations []LMSIntegration `mapstructure:"integrations"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// ObservabilityConfig holds tracing settings. An empty Jaeger endpoint
// disables trace export.
type ObservabilityConfig struct {
	JaegerEndpoint string `mapstructure:"jaeger_endpoint"`
}

// NotificationConfig holds settings for the send-notification worker.
type NotificationConfig struct {
	Email struct {
		Enabled   bool   `mapstructure:"enabled"`
		FromEmail string `mapstructure:"from_email"`
	} `mapstructure:"email"`
	SMS struct {
		Enabled           bool   `mapstructure:"enabled"`
		PriorityThreshold string `mapstructure:"priority_threshold"`
	} `mapstructure:"sms"`
	AWS struct {
		Region string `mapstructure:"region"`
	} `mapstructure:"aws"`
}
