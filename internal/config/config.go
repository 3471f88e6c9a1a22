package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xxxsen/common/logger"
)

type Config struct {
	Port int `json:"port"`
	// RateLimitSeconds is the per-client window on chat and discovery
	// routes; zero disables the limiter.
	RateLimitSeconds int              `json:"rate_limit_seconds"`
	LogConfig        logger.LogConfig `json:"log_config"`
	Database         DatabaseConfig   `json:"database"`
	FileStore        FileStoreConfig  `json:"file_store"`
	Admin            AdminConfig      `json:"admin"`
	AI               AIConfig         `json:"ai"`
	Pipeline         PipelineConfig   `json:"pipeline"`
	Discovery        DiscoveryConfig  `json:"discovery"`
}

type DatabaseConfig struct {
	DSN      string `json:"dsn"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"db_name"`
	SSLMode  string `json:"ssl_mode"`
}

type FileStoreConfig struct {
	Type      string   `json:"type"`
	Dir       string   `json:"dir"`
	PublicURL string   `json:"public_url"`
	S3        S3Config `json:"s3"`
}

type S3Config struct {
	Endpoint  string `json:"endpoint"`
	SecretID  string `json:"secret_id"`
	SecretKey string `json:"secret_key"`
	Bucket    string `json:"bucket"`
	Region    string `json:"region"`
	Prefix    string `json:"prefix"`
	UseSSL    bool   `json:"use_ssl"`
}

type AdminConfig struct {
	// PasswordHash is a bcrypt hash; empty disables the admin endpoints.
	PasswordHash string `json:"password_hash"`
	JWTSecret    string `json:"jwt_secret"`
	JWTTTLHours  int    `json:"jwt_ttl_hours"`
}

// ProviderConfig is one entry of the ordered provider list. Args are
// decoded by the named provider factory.
type ProviderConfig struct {
	Name string      `json:"name"`
	Args interface{} `json:"args"`
}

type AIConfig struct {
	Providers []ProviderConfig `json:"providers"`
	Timeout   int              `json:"timeout"`
}

type PipelineConfig struct {
	TopK          int     `json:"top_k"`
	MinSimilarity float64 `json:"min_similarity"`
	MaxChunkChars int     `json:"max_chunk_chars"`
	ChunkOverlap  int     `json:"chunk_overlap"`
	HistoryLimit  int     `json:"history_limit"`
}

type DiscoveryConfig struct {
	VoteThreshold int    `json:"vote_threshold"`
	Cron          string `json:"cron"`
	BatchSize     int    `json:"batch_size"`
	TopicCount    int    `json:"topic_count"`
	SeedCatalog   bool   `json:"seed_catalog"`
}

func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Port == 0 {
		return nil, fmt.Errorf("port is required")
	}
	if cfg.Database.DSN == "" && cfg.Database.Host == "" {
		return nil, fmt.Errorf("database.dsn or database.host is required")
	}
	if cfg.LogConfig.Level == "" {
		cfg.LogConfig.Level = "info"
	}
	if len(cfg.AI.Providers) == 0 {
		return nil, fmt.Errorf("ai.providers must list at least one provider")
	}
	if cfg.AI.Timeout == 0 {
		cfg.AI.Timeout = 60
	}
	if cfg.Admin.PasswordHash != "" && cfg.Admin.JWTSecret == "" {
		return nil, fmt.Errorf("admin.jwt_secret is required when admin.password_hash is set")
	}
	if cfg.Admin.JWTTTLHours == 0 {
		cfg.Admin.JWTTTLHours = 24
	}
	applyPipelineDefaults(&cfg.Pipeline)
	applyDiscoveryDefaults(&cfg.Discovery)
	if cfg.FileStore.Type == "" {
		cfg.FileStore.Type = "local"
	}
	switch cfg.FileStore.Type {
	case "local":
		if cfg.FileStore.Dir == "" {
			return nil, fmt.Errorf("file_store.dir is required for local store")
		}
	case "s3":
		s3 := cfg.FileStore.S3
		if s3.Endpoint == "" || s3.Bucket == "" || s3.SecretID == "" || s3.SecretKey == "" {
			return nil, fmt.Errorf("file_store.s3 endpoint/bucket/secret_id/secret_key are required for s3 store")
		}
		if cfg.FileStore.S3.Region == "" {
			cfg.FileStore.S3.Region = "us-east-1"
		}
	default:
		return nil, fmt.Errorf("file_store.type must be local or s3")
	}
	return &cfg, nil
}

func applyPipelineDefaults(p *PipelineConfig) {
	if p.TopK == 0 {
		p.TopK = 5
	}
	if p.MinSimilarity == 0 {
		p.MinSimilarity = 0.25
	}
	if p.MaxChunkChars == 0 {
		p.MaxChunkChars = 1200
	}
	if p.ChunkOverlap == 0 {
		p.ChunkOverlap = 120
	}
	if p.HistoryLimit == 0 {
		p.HistoryLimit = 6
	}
}

func applyDiscoveryDefaults(d *DiscoveryConfig) {
	if d.VoteThreshold == 0 {
		d.VoteThreshold = 3
	}
	if d.Cron == "" {
		d.Cron = "0 */6 * * *"
	}
	if d.BatchSize == 0 {
		d.BatchSize = 5
	}
	if d.TopicCount == 0 {
		d.TopicCount = 5
	}
}
