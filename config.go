package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	Port      int            `json:"port"`
	Env       string         `json:"env"`
	CacheSize int            `json:"cache_size"`
	Database  PostgresConfig `json:"database"`
	Identity  IdentityConfig `json:"identity"`
}

func (c Config) IsProd() bool {
	return c.Env == "prod"
}

type PostgresConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	Name     string `json:"name"`
	// URL, when set, is used as is instead of the fields above.
	URL string `json:"url"`
}

func (pc PostgresConfig) Dialect() string {
	return "postgres"
}

func (pc PostgresConfig) ConnectionInfo() string {
	if pc.URL != "" {
		return pc.URL
	}
	if pc.Password == "" {
		return fmt.Sprintf("host=%s port=%d user=%s dbname=%s sslmode=disable", pc.Host, pc.Port, pc.User, pc.Name)
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable", pc.Host, pc.Port, pc.User, pc.Password, pc.Name)
}

// IdentityConfig describes how tokens of the identity provider are verified.
// At least one of HMACSecret and JWKSURL is needed.
type IdentityConfig struct {
	HMACSecret string `json:"hmac_secret"`
	JWKSURL    string `json:"jwks_url"`
	Issuer     string `json:"issuer"`
}

func DefaultConfig() Config {
	return Config{
		Port:      1111,
		Env:       "dev",
		CacheSize: 1024,
		Database:  DefaultPostgresConfig(),
		Identity: IdentityConfig{
			HMACSecret: "dev-only-identity-secret",
		},
	}
}

func DefaultPostgresConfig() PostgresConfig {
	return PostgresConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "postgres",
		Password: "",
		Name:     "wtf_social",
	}
}

// LoadConfig reads .config.json. When the file is missing the default dev setup is
// used, unless required is set, which is the case in production.
// DATABASE_URL and PORT from the environment override the file.
func LoadConfig(required bool) (Config, error) {
	c, err := readConfigFile(".config.json")
	if errors.Is(err, os.ErrNotExist) && !required {
		c = DefaultConfig()
	} else if err != nil {
		return Config{}, fmt.Errorf("load .config.json: %w", err)
	}

	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Database.URL = v
	}
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		c.Port = port
	}
	if c.CacheSize <= 0 {
		c.CacheSize = DefaultConfig().CacheSize
	}
	if c.Identity.HMACSecret == "" && c.Identity.JWKSURL == "" {
		return Config{}, errors.New("config: identity.hmac_secret or identity.jwks_url is required")
	}
	return c, nil
}

func readConfigFile(name string) (Config, error) {
	f, err := os.Open(name)
	if err != nil {
		return Config{}, err
	}
	defer f.Close()
	var c Config
	if err := json.NewDecoder(f).Decode(&c); err != nil {
		return Config{}, err
	}
	return c, nil
}
