package config

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config agrupa la configuración de la aplicación (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App         AppConfig
	DB          DBConfig
	JWT         JWTConfig
	HTTP        HTTPConfig
	Redis       RedisConfig
	MercadoPago MercadoPagoConfig
	SMTP        SMTPConfig
	AI          AIConfig
	Worker      WorkerConfig
	Sales       SalesConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env      string // development, staging, production
	Name     string
	LogLevel string
	Timezone string // IANA; fechas de emails y del tablero
}

// DBConfig configuración de PostgreSQL.
// Si DatabaseURL no está vacío, se usa como connection string completo (ej. DATABASE_URL de Supabase).
type DBConfig struct {
	DatabaseURL string
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	MaxConns    int
	MinConns    int
	ForceIPv4   bool // Docker sin IPv6 contra hosts que resuelven AAAA
	SlowQueryMs int  // 0 = no registrar consultas lentas
	AutoMigrate bool // aplica esquema y procedimientos embebidos al arrancar
}

// ConnectionString devuelve el DSN a usar: DATABASE_URL si está definido, si no el construido con DSN().
func (c DBConfig) ConnectionString() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return c.DSN()
}

// DSN devuelve el connection string para PostgreSQL con URL encoding para caracteres especiales.
func (c DBConfig) DSN() string {
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.DBName,
		RawQuery: fmt.Sprintf("sslmode=%s", c.SSLMode),
	}
	return u.String()
}

// JWTConfig configuración de JWT.
type JWTConfig struct {
	Secret     string
	Expiration int // minutos
	Issuer     string
}

// HTTPConfig configuración del servidor HTTP.
type HTTPConfig struct {
	Host string
	Port int
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// RedisConfig conexión a Redis (caché del portal, cola de emails y locks de webhooks).
type RedisConfig struct {
	URL             string
	CacheTTLSeconds int
}

// CacheTTL devuelve el TTL del caché del portal de precios.
func (c RedisConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// MercadoPagoConfig credenciales y URLs de retorno del checkout.
type MercadoPagoConfig struct {
	AccessToken     string
	WebhookSecret   string // vacío = no se valida x-signature
	BaseURL         string
	NotificationURL string
	SuccessURL      string
	FailureURL      string
	PendingURL      string
}

// SMTPConfig servidor de correo saliente.
type SMTPConfig struct {
	Host       string
	Port       int
	User       string
	Password   string
	From       string
	AdminEmail string // copia oculta de cada notificación de pago
}

// AIConfig credenciales del asistente (chatbot).
type AIConfig struct {
	AnthropicAPIKey string
	AnthropicModel  string
}

// WorkerConfig tamaño del pool de workers de la cola de emails.
type WorkerConfig struct {
	Count int
}

// SalesConfig parámetros de ventas online.
type SalesConfig struct {
	AbandonedAfterMinutes int // ventas online "Pendiente" pasan a "Carrito Abandonado"
	CurrencyID            string
}

// AbandonedAfter devuelve el umbral de abandono de carritos.
func (c SalesConfig) AbandonedAfter() time.Duration {
	return time.Duration(c.AbandonedAfterMinutes) * time.Minute
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo).
// Las env vars tienen prioridad. Nombres esperados: APP_ENV, DB_HOST, JWT_SECRET, MP_ACCESS_TOKEN, etc.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := fromViper(v)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		App: AppConfig{
			Env:      getString(v, "APP_ENV", "development"),
			Name:     getString(v, "APP_NAME", "tienda-erp"),
			LogLevel: getString(v, "LOG_LEVEL", "info"),
			Timezone: getString(v, "APP_TIMEZONE", "America/Argentina/Buenos_Aires"),
		},
		DB: DBConfig{
			DatabaseURL: getString(v, "DATABASE_URL", ""),
			Host:        getString(v, "DB_HOST", "localhost"),
			Port:        getInt(v, "DB_PORT", 5432),
			User:        getString(v, "DB_USER", "postgres"),
			Password:    getString(v, "DB_PASSWORD", ""),
			DBName:      getString(v, "DB_NAME", "tienda_erp"),
			SSLMode:     getString(v, "DB_SSLMODE", "disable"),
			MaxConns:    getInt(v, "DB_MAX_CONNS", 25),
			MinConns:    getInt(v, "DB_MIN_CONNS", 2),
			ForceIPv4:   getString(v, "DB_FORCE_IPV4", "true") == "true",
			SlowQueryMs: getInt(v, "DB_SLOW_QUERY_MS", 500),
			AutoMigrate: getString(v, "DB_AUTO_MIGRATE", "false") == "true",
		},
		JWT: JWTConfig{
			Secret:     getString(v, "JWT_SECRET", ""),
			Expiration: getInt(v, "JWT_EXPIRATION_MINUTES", 60),
			Issuer:     getString(v, "JWT_ISSUER", "tienda-erp"),
		},
		HTTP: HTTPConfig{
			Host: getString(v, "HTTP_HOST", "0.0.0.0"),
			Port: getInt(v, "HTTP_PORT", 8080),
		},
		Redis: RedisConfig{
			URL:             getString(v, "REDIS_URL", "redis://localhost:6379/0"),
			CacheTTLSeconds: getInt(v, "PORTAL_CACHE_TTL_SECONDS", 300),
		},
		MercadoPago: MercadoPagoConfig{
			AccessToken:     getString(v, "MP_ACCESS_TOKEN", ""),
			WebhookSecret:   getString(v, "MP_WEBHOOK_SECRET", ""),
			BaseURL:         getString(v, "MP_BASE_URL", "https://api.mercadopago.com"),
			NotificationURL: getString(v, "MP_NOTIFICATION_URL", ""),
			SuccessURL:      getString(v, "MP_SUCCESS_URL", ""),
			FailureURL:      getString(v, "MP_FAILURE_URL", ""),
			PendingURL:      getString(v, "MP_PENDING_URL", ""),
		},
		SMTP: SMTPConfig{
			Host:       getString(v, "SMTP_HOST", "localhost"),
			Port:       getInt(v, "SMTP_PORT", 587),
			User:       getString(v, "SMTP_USER", ""),
			Password:   getString(v, "SMTP_PASSWORD", ""),
			From:       getString(v, "SMTP_FROM", "ventas@tienda.local"),
			AdminEmail: getString(v, "SMTP_ADMIN_EMAIL", ""),
		},
		AI: AIConfig{
			AnthropicAPIKey: getString(v, "ANTHROPIC_API_KEY", ""),
			AnthropicModel:  getString(v, "ANTHROPIC_MODEL", "claude-3-5-haiku-20241022"),
		},
		Worker: WorkerConfig{
			Count: getInt(v, "WORKER_COUNT", 2),
		},
		Sales: SalesConfig{
			AbandonedAfterMinutes: getInt(v, "ABANDONED_CART_MINUTES", 120),
			CurrencyID:            getString(v, "CURRENCY_ID", "ARS"),
		},
	}
}

// Validate verifica los valores obligatorios.
func (c *Config) Validate() error {
	var errs []error
	if c.JWT.Secret == "" {
		errs = append(errs, errors.New("JWT_SECRET es obligatorio"))
	}
	if c.DB.DatabaseURL == "" && c.DB.Host == "" {
		errs = append(errs, errors.New("DATABASE_URL o DB_HOST es obligatorio"))
	}
	if c.Worker.Count < 1 {
		errs = append(errs, errors.New("WORKER_COUNT debe ser >= 1"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case int:
			return v.GetInt(key)
		case string:
			n, err := strconv.Atoi(v.GetString(key))
			if err != nil {
				return def
			}
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}
