package config

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v4"
)

type Config struct {
	Kafka     KafkaConfig     `yaml:"kafka"`
	Redis     RedisConfig     `yaml:"redis"`
	Backend   BackendConfig   `yaml:"backend"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	Refresher RefresherConfig `yaml:"refresher"`
}

type KafkaConfig struct {
	Host                         string `yaml:"host"`
	Port                         int    `yaml:"port"`
	StatusChangedTopicName       string `yaml:"status_changed_topic_name"`
	DeliveriesRefreshedTopicName string `yaml:"deliveries_refreshed_topic_name"`
}

func (k KafkaConfig) Brokers() []string {
	return []string{fmt.Sprintf("%s:%d", k.Host, k.Port)}
}

type RedisConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// BackendConfig points at the store backend REST API.
type BackendConfig struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	// Token is a service token for the refresher and for dashboard requests
	// that carry no credentials of their own.
	Token string `yaml:"token"`
	// TokenFile holds a rotated service token; it is re-read after a 401.
	TokenFile string `yaml:"token_file"`
}

type DashboardConfig struct {
	HTTPAddr           string `yaml:"http_addr"`
	KafkaConsumerGroup string `yaml:"kafka_consumer_group"`
	// DataSourceMode: "backend" (default) | "development" | "synthetic".
	DataSourceMode       string `yaml:"data_source_mode"`
	FallbackCount        int    `yaml:"fallback_count"`
	SnapshotTTLSeconds   int    `yaml:"snapshot_ttl_seconds"`
	SessionTTLSeconds    int    `yaml:"session_ttl_seconds"`
	NotifyLimitPerMinute int    `yaml:"notify_limit_per_minute"`
	LogLevel             string `yaml:"log_level"`
}

type RefresherConfig struct {
	HTTPAddr           string   `yaml:"http_addr"`
	IntervalSeconds    int      `yaml:"interval_seconds"`
	StoreIDs           []string `yaml:"store_ids"`
	Concurrency        int      `yaml:"concurrency"`
	RateLimitPerMinute int      `yaml:"rate_limit_per_minute"`

	Backoff1Seconds int `yaml:"backoff_1_seconds"`
	Backoff2Seconds int `yaml:"backoff_2_seconds"`
	Backoff3Seconds int `yaml:"backoff_3_seconds"`
	Backoff4Seconds int `yaml:"backoff_4_seconds"`
}

func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	err = yaml.Unmarshal(data, &config)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal YAML: %w", err)
	}

	return &config, nil
}
