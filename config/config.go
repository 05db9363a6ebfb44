package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
	"github.com/slighter12/go-lib/database/postgres"
)

// EnvDevelop is the env.env value of local development.
const EnvDevelop = "develop"

const (
	defaultPath               = "."
	defaultMaxRequestBodySize = "100KB"

	defaultBcryptCost           = 12
	defaultMinPasswordLength    = 8
	defaultSessionMaxAge        = 7 * 24 * time.Hour
	defaultSessionSweepInterval = 24 * time.Hour
	defaultSessionCookieName    = "folio_sid"
	defaultTOTPIssuer           = "Tech2Saini Portfolio"
	defaultTOTPPeriod           = 30
	defaultTOTPSkew             = 2
	defaultQRCodeSize           = 256
	defaultPasswordResetTTL     = time.Hour
	defaultTelegramAPIBase      = "https://api.telegram.org"
	defaultTelegramTimeout      = 10 * time.Second
)

type Config struct {
	Env struct {
		Env         string `json:"env" yaml:"env"`
		ServiceName string `json:"serviceName" yaml:"serviceName"`
		Debug       bool   `json:"debug" yaml:"debug"`
		Log         Log    `json:"log" yaml:"log"`
	} `json:"env" yaml:"env"`

	HTTP struct {
		Port               int      `json:"port" yaml:"port"`
		MaxRequestBodySize string   `json:"maxRequestBodySize" yaml:"maxRequestBodySize"`
		AllowedOrigins     []string `json:"allowedOrigins" yaml:"allowedOrigins"`
		Timeouts           struct {
			ReadTimeout       time.Duration `json:"readTimeout" yaml:"readTimeout"`
			ReadHeaderTimeout time.Duration `json:"readHeaderTimeout" yaml:"readHeaderTimeout"`
			WriteTimeout      time.Duration `json:"writeTimeout" yaml:"writeTimeout"`
			IdleTimeout       time.Duration `json:"idleTimeout" yaml:"idleTimeout"`
		} `json:"timeouts" yaml:"timeouts"`
	} `json:"http" yaml:"http"`

	Postgres *postgres.DBConn `json:"postgres" yaml:"postgres" mapstructure:"postgres"`

	SecretKey struct {
		// Reset signs password-reset tokens.
		Reset string `json:"reset" yaml:"reset"`
	} `json:"secretKey" yaml:"secretKey"`

	App *AppConfig `json:"app" yaml:"app"`

	Auth *AuthConfig `json:"auth" yaml:"auth"`

	Session *SessionConfig `json:"session" yaml:"session"`

	TOTP *TOTPConfig `json:"totp" yaml:"totp"`

	// QRCode configuration for two-factor provisioning codes
	QRCode *QRCodeConfig `json:"qrcode" yaml:"qrcode"`

	PasswordReset *PasswordResetConfig `json:"passwordReset" yaml:"passwordReset"`

	Mail *MailConfig `json:"mail" yaml:"mail"`

	Telegram *TelegramConfig `json:"telegram" yaml:"telegram"`

	// PubSub configuration for security event publishing
	PubSub *PubSubConfig `json:"pubsub" yaml:"pubsub"`

	Worker *WorkerConfig `json:"worker" yaml:"worker"`
}

// IsDevelop reports whether the service runs in local development.
func (cfg *Config) IsDevelop() bool {
	return cfg.Env.Env == EnvDevelop
}

// AppConfig describes the public-facing application.
type AppConfig struct {
	// FrontendURL is the base for links placed in outgoing mail.
	FrontendURL string `json:"frontendURL" yaml:"frontendURL"`
}

// AuthConfig defines authentication-related configuration
type AuthConfig struct {
	BcryptCost        int `json:"bcryptCost" yaml:"bcryptCost"`
	MinPasswordLength int `json:"minPasswordLength" yaml:"minPasswordLength"`
	// RevealUnknownResetEmail makes forgot-password answer 404 for unknown addresses.
	RevealUnknownResetEmail bool `json:"revealUnknownResetEmail" yaml:"revealUnknownResetEmail"`
}

// SessionConfig controls the in-memory session table and its cookie.
type SessionConfig struct {
	MaxAge        time.Duration `json:"maxAge" yaml:"maxAge"`
	SweepInterval time.Duration `json:"sweepInterval" yaml:"sweepInterval"`
	CookieName    string        `json:"cookieName" yaml:"cookieName"`
	SecureCookie  bool          `json:"secureCookie" yaml:"secureCookie"`
}

// TOTPConfig defines the one-time code parameters.
type TOTPConfig struct {
	Issuer string `json:"issuer" yaml:"issuer"`
	Period uint   `json:"period" yaml:"period"`
	Skew   uint   `json:"skew" yaml:"skew"`
}

type Log struct {
	Pretty bool   `json:"pretty" yaml:"pretty"`
	Level  string `json:"level" yaml:"level"`
}

// QRCodeConfig defines QR code generation configuration
type QRCodeConfig struct {
	Size                 int    `json:"size" yaml:"size"`
	ErrorCorrectionLevel string `json:"errorCorrectionLevel" yaml:"errorCorrectionLevel"`
}

// PasswordResetConfig defines the lifetime of issued reset tokens.
type PasswordResetConfig struct {
	TTL time.Duration `json:"ttl" yaml:"ttl"`
}

// MailConfig defines the SMTP relay. An empty Host selects the log-only mailer.
type MailConfig struct {
	Host     string `json:"host" yaml:"host"`
	Port     int    `json:"port" yaml:"port"`
	Username string `json:"username" yaml:"username"`
	Password string `json:"password" yaml:"password"`
	From     string `json:"from" yaml:"from"`
	FromName string `json:"fromName" yaml:"fromName"`
}

// TelegramConfig defines the Bot API endpoint.
type TelegramConfig struct {
	APIBase string        `json:"apiBase" yaml:"apiBase"`
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// PubSubConfig defines Pub/Sub configuration for event publishing
type PubSubConfig struct {
	// Provider type: "local" for local HTTP or "google" for Google Pub/Sub
	Provider string `json:"provider" yaml:"provider"`

	// Google Cloud project ID (for google provider)
	ProjectID string `json:"projectId" yaml:"projectId"`

	// Pub/Sub topic ID (for google provider)
	TopicID string `json:"topicId" yaml:"topicId"`

	// Local HTTP endpoint for development (for local provider)
	LocalEndpoint string `json:"localEndpoint" yaml:"localEndpoint"`
}

// WorkerConfig defines the alert worker listener.
type WorkerConfig struct {
	Port int `json:"port" yaml:"port"`
}

// LoadWithEnv loads .yaml files through koanf.
func LoadWithEnv[T any](currEnv string, configPath ...string) (*T, error) {
	cfg := new(T)
	koanfInstance := koanf.New(".")

	// Build list of paths to search for config file
	searchPaths := []string{defaultPath}
	if len(configPath) != 0 {
		pwd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, "os.Getwd")
		}
		for _, path := range configPath {
			abs := filepath.Join(pwd, path)
			searchPaths = append(searchPaths, abs)
		}
	}

	// Try to find and load the config file
	var configFile string
	var found bool
	for _, path := range searchPaths {
		candidate := filepath.Join(path, currEnv+".yaml")
		if _, err := os.Stat(candidate); err == nil {
			configFile = candidate
			found = true

			break
		}
	}

	if !found {
		return nil, errors.Errorf("config file %s.yaml not found in any search path", currEnv)
	}

	// Load YAML config file
	if err := koanfInstance.Load(file.Provider(configFile), yaml.Parser()); err != nil {
		return nil, errors.Wrapf(err, "read %s config failed", currEnv)
	}

	existingConfigMap := koanfInstance.Raw()

	// Load environment variables
	if err := koanfInstance.Load(env.Provider(".", env.Opt{
		TransformFunc: func(k, v string) (string, any) {
			// Convert ENV_VAR_NAME to path and align each segment with existing YAML keys.
			// Example: POSTGRES_SSLMODE -> postgres.sslMode (not postgres.sslmode)
			key := canonicalizeEnvKey(k, existingConfigMap)

			return key, v
		},
	}), nil); err != nil {
		return nil, errors.Wrap(err, "load env variables failed")
	}

	// Unmarshal into the config struct (case-insensitive to match env vars)
	if err := koanfInstance.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
			),
			MatchName: func(mapKey, fieldName string) bool {
				// Case-insensitive matching for env var overrides
				return strings.EqualFold(mapKey, fieldName)
			},
		},
	}); err != nil {
		return nil, errors.Wrapf(err, "unmarshal %s config failed", currEnv)
	}

	return cfg, nil
}

func New() (*Config, error) {
	// A missing .env is normal outside local development.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "load .env")
	}

	cfg, err := LoadWithEnv[Config]("config", "config", "../config", "../../config")
	if err != nil {
		return nil, err
	}

	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}

	// Build replicas from environment variables (POSTGRES_REPLICAS_0_HOST, POSTGRES_REPLICAS_0_PORT, etc.)
	if cfg.Postgres != nil {
		cfg.Postgres.Replicas = buildReplicasFromEnv()
	}

	return cfg, nil
}

// applyDefaults fills optional sections so consumers never see a nil block.
func (cfg *Config) applyDefaults() error {
	if strings.TrimSpace(cfg.HTTP.MaxRequestBodySize) == "" {
		cfg.HTTP.MaxRequestBodySize = defaultMaxRequestBodySize
	}
	if cfg.App == nil {
		cfg.App = &AppConfig{}
	}
	if cfg.Auth == nil {
		cfg.Auth = &AuthConfig{}
	}
	if cfg.Auth.BcryptCost == 0 {
		cfg.Auth.BcryptCost = defaultBcryptCost
	}
	if cfg.Auth.MinPasswordLength == 0 {
		cfg.Auth.MinPasswordLength = defaultMinPasswordLength
	}
	if cfg.Session == nil {
		cfg.Session = &SessionConfig{}
	}
	if cfg.Session.MaxAge <= 0 {
		cfg.Session.MaxAge = defaultSessionMaxAge
	}
	if cfg.Session.SweepInterval <= 0 {
		cfg.Session.SweepInterval = defaultSessionSweepInterval
	}
	if cfg.Session.CookieName == "" {
		cfg.Session.CookieName = defaultSessionCookieName
	}
	if cfg.TOTP == nil {
		cfg.TOTP = &TOTPConfig{}
	}
	if cfg.TOTP.Issuer == "" {
		cfg.TOTP.Issuer = defaultTOTPIssuer
	}
	if cfg.TOTP.Period == 0 {
		cfg.TOTP.Period = defaultTOTPPeriod
	}
	if cfg.TOTP.Skew == 0 {
		cfg.TOTP.Skew = defaultTOTPSkew
	}
	if cfg.QRCode == nil {
		cfg.QRCode = &QRCodeConfig{Size: defaultQRCodeSize, ErrorCorrectionLevel: "M"}
	}
	if cfg.PasswordReset == nil {
		cfg.PasswordReset = &PasswordResetConfig{}
	}
	if cfg.PasswordReset.TTL <= 0 {
		cfg.PasswordReset.TTL = defaultPasswordResetTTL
	}
	if cfg.Mail == nil {
		cfg.Mail = &MailConfig{}
	}
	if cfg.Telegram == nil {
		cfg.Telegram = &TelegramConfig{}
	}
	if cfg.Telegram.APIBase == "" {
		cfg.Telegram.APIBase = defaultTelegramAPIBase
	}
	if cfg.Telegram.Timeout <= 0 {
		cfg.Telegram.Timeout = defaultTelegramTimeout
	}
	if cfg.Worker == nil {
		cfg.Worker = &WorkerConfig{Port: cfg.HTTP.Port}
	}

	if strings.TrimSpace(cfg.SecretKey.Reset) == "" {
		return errors.New("secretKey.reset must be provided")
	}

	return nil
}

func canonicalizeEnvKey(rawKey string, existing map[string]any) string {
	segments := strings.Split(strings.ToLower(rawKey), "_")
	canonical := make([]string, 0, len(segments))
	current := existing

	for _, segment := range segments {
		if segment == "" {
			continue
		}

		if matched, next, ok := findExistingSegment(current, segment); ok {
			canonical = append(canonical, matched)
			current = next
		} else {
			canonical = append(canonical, segment)
			current = nil
		}
	}

	return strings.Join(canonical, ".")
}

func findExistingSegment(current map[string]any, segment string) (matched string, next map[string]any, ok bool) {
	if len(current) == 0 {
		return "", nil, false
	}

	needle := normalizeToken(segment)
	for key, value := range current {
		if normalizeToken(key) != needle {
			continue
		}

		child, _ := value.(map[string]any)

		return key, child, true
	}

	return "", nil, false
}

func normalizeToken(s string) string {
	var normalized strings.Builder
	normalized.Grow(len(s))

	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		normalized.WriteRune(unicode.ToLower(r))
	}

	return normalized.String()
}

// buildReplicasFromEnv builds the replicas slice from environment variables.
// Environment variable format: POSTGRES_REPLICAS_{index}_{field}
// Example: POSTGRES_REPLICAS_0_HOST, POSTGRES_REPLICAS_0_PORT, POSTGRES_REPLICAS_0_USERNAME, POSTGRES_REPLICAS_0_PASSWORD
func buildReplicasFromEnv() []postgres.ConnectionConfig {
	var replicas []postgres.ConnectionConfig

	for i := 0; ; i++ {
		prefix := "POSTGRES_REPLICAS_" + strconv.Itoa(i) + "_"

		host := os.Getenv(prefix + "HOST")
		port := os.Getenv(prefix + "PORT")
		if host == "" || port == "" {
			// No more replicas or incomplete configuration.
			break
		}

		replica := postgres.ConnectionConfig{
			Host:     host,
			Port:     port,
			UserName: os.Getenv(prefix + "USERNAME"),
			Password: os.Getenv(prefix + "PASSWORD"),
		}

		replicas = append(replicas, replica)
	}

	return replicas
}
