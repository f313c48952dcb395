package config

import (
	"crypto/ed25519"
	"encoding/base64"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"tns/pkg/domain"
)

// Server captures process level configuration.
type Server struct {
	Addr     string
	LogLevel string

	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Oracle   OracleConfig

	ReservedTickersFile string
	// AssetFixturesFile seeds the in-memory asset mirror. Ignored with a database.
	AssetFixturesFile string
	KeeperInterval      time.Duration
	TxTimeout           time.Duration

	// KeeperAddress receives sweep rewards. Zero disables the in-process keeper.
	KeeperAddress domain.Address
	// JWTAudience scopes signer tokens to this deployment.
	JWTAudience string
}

// DatabaseConfig configures the Postgres ledger. An empty URL selects the
// in-memory ledger.
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig configures the quote store. An empty URL selects the in-memory store.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig configures event publishing. No brokers disables the relay.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// OracleConfig holds the publisher key that signs price quotes and the feeds
// used at initialization.
type OracleConfig struct {
	PublicKey         ed25519.PublicKey
	NativePriceFeed   domain.Address
	ProtocolPriceFeed *domain.Address
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() (Server, error) {
	cfg := Server{
		Addr:                getenv("TNS_ADDR", ":8080"),
		LogLevel:            getenv("LOG_LEVEL", "info"),
		ReservedTickersFile: os.Getenv("RESERVED_TICKERS_FILE"),
		AssetFixturesFile:   os.Getenv("ASSET_FIXTURES_FILE"),
		JWTAudience:         getenv("JWT_AUDIENCE", "tns"),
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Kafka: KafkaConfig{
			Topic: getenv("TNS_EVENTS_TOPIC", "tns.registry.events"),
		},
	}

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.Kafka.Brokers = append(cfg.Kafka.Brokers, b)
			}
		}
	}

	var err error
	if cfg.KeeperInterval, err = durationEnv("KEEPER_INTERVAL", time.Hour); err != nil {
		return Server{}, err
	}
	if cfg.TxTimeout, err = durationEnv("TX_TIMEOUT", 5*time.Second); err != nil {
		return Server{}, err
	}
	if v := os.Getenv("DB_MAX_OPEN_CONNS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Server{}, fmt.Errorf("DB_MAX_OPEN_CONNS: %w", err)
		}
		cfg.Database.MaxOpenConns = n
	}

	if v := os.Getenv("KEEPER_ADDRESS"); v != "" {
		if cfg.KeeperAddress, err = domain.ParseAddress(v); err != nil {
			return Server{}, fmt.Errorf("KEEPER_ADDRESS: %w", err)
		}
	}

	if cfg.Oracle, err = oracleFromEnv(); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

func oracleFromEnv() (OracleConfig, error) {
	var oc OracleConfig
	if v := os.Getenv("ORACLE_PUBLIC_KEY"); v != "" {
		raw, err := base64.StdEncoding.DecodeString(v)
		if err != nil {
			return oc, fmt.Errorf("ORACLE_PUBLIC_KEY: %w", err)
		}
		if len(raw) != ed25519.PublicKeySize {
			return oc, fmt.Errorf("ORACLE_PUBLIC_KEY: want %d bytes, got %d", ed25519.PublicKeySize, len(raw))
		}
		oc.PublicKey = ed25519.PublicKey(raw)
	}
	if v := os.Getenv("NATIVE_PRICE_FEED"); v != "" {
		feed, err := domain.ParseAddress(v)
		if err != nil {
			return oc, fmt.Errorf("NATIVE_PRICE_FEED: %w", err)
		}
		oc.NativePriceFeed = feed
	}
	if v := os.Getenv("PROTOCOL_PRICE_FEED"); v != "" {
		feed, err := domain.ParseAddress(v)
		if err != nil {
			return oc, fmt.Errorf("PROTOCOL_PRICE_FEED: %w", err)
		}
		oc.ProtocolPriceFeed = &feed
	}
	return oc, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
