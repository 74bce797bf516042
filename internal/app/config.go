package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"

	"github.com/xenking/pos-console/internal/domain/ordercode"
)

const defaultAddr = "127.0.0.1:8090"

// Config holds the console configuration, loadable from environment
// variables (POS_ prefix), flags, or YAML config files.
type Config struct {
	Addr     string `default:"127.0.0.1:8090" usage:"Console API listen address"`
	Backend  BackendConfig
	Order    OrderConfig
	CORS     CORSConfig
	Graceful GracefulConfig
}

// BackendConfig points the console at the point-of-sale REST backend.
type BackendConfig struct {
	URL     string        `default:"http://localhost:8080" usage:"Backend base URL" flag:"backend-url"`
	Timeout time.Duration `default:"10s" usage:"Per-request backend timeout" flag:"backend-timeout"`
}

// OrderConfig holds the fixed values stamped on every order.
type OrderConfig struct {
	FallbackCode string `default:"ORD-2025-0001" usage:"Order code used when the current code is unknown or malformed" flag:"fallback-code"`
	AdminID      int64  `default:"1" usage:"Admin id recorded on orders"`
	AdminName    string `default:"admin" usage:"Admin name recorded on orders"`
	PaymentID    int64  `default:"1" usage:"Payment method id recorded on orders"`
	PaymentName  string `default:"Cash" usage:"Payment method name recorded on orders"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins          []string `default:"*" usage:"Allowed CORS origins"`
	AllowCredentials bool     `default:"false" usage:"Allow credentials" flag:"cors-credentials"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"1s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from environment variables and YAML config
// files and validates it.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "POS",
		Files:     []string{"config.yaml", "/etc/pos-console/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the values that would otherwise only fail at first use.
func (c *Config) Validate() error {
	if c.Backend.URL == "" {
		return errors.New("backend URL is required: set POS_BACKEND_URL")
	}
	if c.Backend.Timeout <= 0 {
		return errors.Errorf("backend timeout must be positive, got %s", c.Backend.Timeout)
	}
	if _, err := ordercode.Parse(c.Order.FallbackCode); err != nil {
		return errors.Wrap(err, "fallback code")
	}
	return nil
}

// applyPlatformDefaults honours the conventional PORT variable when the
// listen address was left at its default. Platforms that set PORT route
// traffic from outside the container, so it binds all interfaces.
func (c *Config) applyPlatformDefaults() {
	if port := os.Getenv("PORT"); port != "" && c.Addr == defaultAddr {
		c.Addr = "0.0.0.0:" + port
	}
}
