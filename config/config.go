package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP          HTTPConfig          `yaml:"http"`
	Log           LogConfig           `yaml:"log"`
	Database      DatabaseConfig      `yaml:"database"`
	Redis         RedisConfig         `yaml:"redis"`
	Kafka         KafkaConfig         `yaml:"kafka"`
	Booking       BookingConfig       `yaml:"booking"`
	Auth          AuthConfig          `yaml:"auth"`
	SMTP          SMTPConfig          `yaml:"smtp"`
	AviationStack AviationStackConfig `yaml:"aviationstack"`
	Places        PlacesConfig        `yaml:"places"`
	Media         MediaConfig         `yaml:"media"`
}

type HTTPConfig struct {
	Address    string `yaml:"address"`
	SwaggerDir string `yaml:"swagger_dir"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers            []string `yaml:"brokers"`
	NotificationsTopic string   `yaml:"notifications_topic"`
	GroupID            string   `yaml:"group_id"`
}

type BookingConfig struct {
	FlightsCacheTTL      int `yaml:"flights_cache_ttl_seconds"`
	DefaultSeats         int `yaml:"default_seats"`
	ReferenceAttempts    int `yaml:"reference_attempts"`
	LookupRetryAttempts  int `yaml:"lookup_retry_attempts"`
	LookupRetryBackoffMS int `yaml:"lookup_retry_backoff_ms"`
}

type AuthConfig struct {
	Secret           string `yaml:"secret"`
	AccessTTLMinutes int    `yaml:"access_ttl_minutes"`
	RefreshTTLHours  int    `yaml:"refresh_ttl_hours"`
}

type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

type AviationStackConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
}

type PlacesConfig struct {
	NominatimURL   string  `yaml:"nominatim_url"`
	OverpassURL    string  `yaml:"overpass_url"`
	PexelsURL      string  `yaml:"pexels_url"`
	PexelsKey      string  `yaml:"pexels_key"`
	DefaultLat     float64 `yaml:"default_lat"`
	DefaultLon     float64 `yaml:"default_lon"`
	RadiusMeters   int     `yaml:"radius_meters"`
	LookupCacheTTL int     `yaml:"lookup_cache_ttl_seconds"`
}

type MediaConfig struct {
	Dir string `yaml:"dir"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &cfg, nil
}
