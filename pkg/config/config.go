package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config agrupa la configuración de la aplicación (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App      AppConfig
	DB       DBConfig
	Tenancy  TenancyConfig
	JWT      JWTConfig
	HTTP     HTTPConfig
	Modules  ModulesConfig
	Sequence SequenceConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env      string // development, staging, production
	Name     string
	LogLevel string
}

// DBConfig configuración de PostgreSQL para la base central (landlord).
// Si DatabaseURL no está vacío, se usa como connection string completo.
type DBConfig struct {
	DatabaseURL string
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
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

// TenancyConfig describe cómo se llega a la base de datos aislada de cada tenant.
type TenancyConfig struct {
	// CentralDomains son los hosts del landlord: en ellos no se inicializa ningún tenant.
	CentralDomains []string
	// DatabaseTemplate es un DSN con un único %s que se reemplaza por el nombre de base del tenant.
	// Vacío = se reutiliza el DSN central cambiando solo el nombre de la base.
	DatabaseTemplate string
	// MaxConnsPerTenant limita el pool que se abre para cada tenant.
	MaxConnsPerTenant int32
	// LandlordAPIKey protege las rutas del landlord (cabecera X-Landlord-Key). Vacío = rutas deshabilitadas.
	LandlordAPIKey string
}

// IsCentral informa si el host pertenece al landlord.
func (c TenancyConfig) IsCentral(host string) bool {
	host = strings.ToLower(hostOnly(host))
	for _, d := range c.CentralDomains {
		if strings.EqualFold(strings.TrimSpace(d), host) {
			return true
		}
	}
	return false
}

// TenantDSN construye el DSN de la base de un tenant.
func (c TenancyConfig) TenantDSN(central DBConfig, databaseName string) string {
	if c.DatabaseTemplate != "" {
		return fmt.Sprintf(c.DatabaseTemplate, databaseName)
	}
	dbCfg := central
	if dbCfg.DatabaseURL != "" {
		if u, err := url.Parse(dbCfg.DatabaseURL); err == nil {
			u.Path = "/" + databaseName
			return u.String()
		}
	}
	dbCfg.DBName = databaseName
	return dbCfg.DSN()
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

// ModulesConfig configuración del registro de módulos.
type ModulesConfig struct {
	// CacheTTL es la ventana máxima de desactualización aceptada para la activación de módulos.
	// 0 desactiva la caché.
	CacheTTL time.Duration
}

// SequenceConfig configuración del generador de consecutivos.
type SequenceConfig struct {
	MaxAttempts  int
	RetryBackoff time.Duration
	LockTimeout  time.Duration
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo).
// Las env vars tienen prioridad. Nombres esperados: APP_ENV, DB_HOST, JWT_SECRET, TENANCY_CENTRAL_DOMAINS, etc.
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

	cfg := &Config{
		App: AppConfig{
			Env:      getString(v, "APP_ENV", "development"),
			Name:     getString(v, "APP_NAME", "erp-core"),
			LogLevel: getString(v, "LOG_LEVEL", "info"),
		},
		DB: DBConfig{
			DatabaseURL: getString(v, "DATABASE_URL", ""),
			Host:        getString(v, "DB_HOST", "localhost"),
			Port:        getInt(v, "DB_PORT", 5432),
			User:        getString(v, "DB_USER", "postgres"),
			Password:    getString(v, "DB_PASSWORD", ""),
			DBName:      getString(v, "DB_NAME", "erp_landlord"),
			SSLMode:     getString(v, "DB_SSLMODE", "disable"),
		},
		Tenancy: TenancyConfig{
			CentralDomains:    getList(v, "TENANCY_CENTRAL_DOMAINS", []string{"localhost", "127.0.0.1"}),
			DatabaseTemplate:  getString(v, "TENANCY_DATABASE_TEMPLATE", ""),
			MaxConnsPerTenant: int32(getInt(v, "TENANCY_MAX_CONNS_PER_TENANT", 5)),
			LandlordAPIKey:    getString(v, "TENANCY_LANDLORD_API_KEY", ""),
		},
		JWT: JWTConfig{
			Secret:     getString(v, "JWT_SECRET", ""),
			Expiration: getInt(v, "JWT_EXPIRATION_MINUTES", 60),
			Issuer:     getString(v, "JWT_ISSUER", "erp-core"),
		},
		HTTP: HTTPConfig{
			Host: getString(v, "HTTP_HOST", "0.0.0.0"),
			Port: getInt(v, "HTTP_PORT", 8080),
		},
		Modules: ModulesConfig{
			CacheTTL: getDuration(v, "MODULES_CACHE_TTL", 30*time.Second),
		},
		Sequence: SequenceConfig{
			MaxAttempts:  getInt(v, "SEQUENCE_MAX_ATTEMPTS", 3),
			RetryBackoff: getDuration(v, "SEQUENCE_RETRY_BACKOFF", 25*time.Millisecond),
			LockTimeout:  getDuration(v, "SEQUENCE_LOCK_TIMEOUT", 2*time.Second),
		},
	}

	if cfg.JWT.Secret == "" && cfg.App.Env == "production" {
		return nil, fmt.Errorf("config: JWT_SECRET es obligatorio en producción")
	}
	if cfg.Sequence.MaxAttempts < 1 {
		cfg.Sequence.MaxAttempts = 1
	}
	return cfg, nil
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
		case string:
			n, err := strconv.Atoi(strings.TrimSpace(v.GetString(key)))
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

// getDuration acepta "30s", "250ms" o un entero interpretado como segundos.
func getDuration(v *viper.Viper, key string, def time.Duration) time.Duration {
	if !v.IsSet(key) {
		return def
	}
	raw := strings.TrimSpace(v.GetString(key))
	if n, err := strconv.Atoi(raw); err == nil {
		return time.Duration(n) * time.Second
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return def
	}
	return d
}

// getList lee una lista separada por comas.
func getList(v *viper.Viper, key string, def []string) []string {
	if !v.IsSet(key) {
		return def
	}
	var out []string
	for _, part := range strings.Split(v.GetString(key), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func hostOnly(host string) string {
	if i := strings.LastIndex(host, ":"); i >= 0 && !strings.Contains(host[i:], "]") {
		return host[:i]
	}
	return host
}
