package config

import (
	"log/slog"
	"strings"
	"testing"
	"time"
)

const testSecret = "test-secret-key-that-is-32-bytes!"

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", testSecret)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want %q", cfg.Port, "8080")
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v, want %v", cfg.LogLevel, slog.LevelInfo)
	}
	if cfg.Database.Driver != DriverPostgres {
		t.Errorf("Database.Driver = %q, want %q", cfg.Database.Driver, DriverPostgres)
	}
	if cfg.Database.MaxOpenConns != 10 {
		t.Errorf("Database.MaxOpenConns = %d, want 10", cfg.Database.MaxOpenConns)
	}
	if cfg.Auth.JWTTTL != 24*time.Hour {
		t.Errorf("Auth.JWTTTL = %v, want 24h", cfg.Auth.JWTTTL)
	}
	if !cfg.Auth.EnforceOwnership {
		t.Error("Auth.EnforceOwnership should default to true")
	}
	if cfg.Events.Backend != EventsBackendChannel {
		t.Errorf("Events.Backend = %q, want %q", cfg.Events.Backend, EventsBackendChannel)
	}
	if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "*" {
		t.Errorf("CORSAllowedOrigins = %v, want [*]", cfg.CORSAllowedOrigins)
	}
	if cfg.UseRedisCache() {
		t.Error("UseRedisCache() should be false without REDIS_URL")
	}
}

func TestLoadConfig_CustomValues(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", testSecret)
	t.Setenv("PORT", "3000")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("DB_DRIVER", "mysql")
	t.Setenv("DB_MAX_OPEN_CONNS", "25")
	t.Setenv("EVENTS_BACKEND", "kafka")
	t.Setenv("EVENTS_KAFKA_BROKERS", "kafka-1:9092,kafka-2:9092")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://localhost:5173,https://learn.example.com")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}

	if cfg.Port != "3000" {
		t.Errorf("Port = %q, want %q", cfg.Port, "3000")
	}
	if !cfg.IsProduction() {
		t.Error("IsProduction() should be true")
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel = %v, want %v", cfg.LogLevel, slog.LevelDebug)
	}
	if cfg.Database.MaxOpenConns != 25 {
		t.Errorf("Database.MaxOpenConns = %d, want 25", cfg.Database.MaxOpenConns)
	}
	if len(cfg.Events.KafkaBrokers) != 2 {
		t.Errorf("Events.KafkaBrokers = %v, want 2 brokers", cfg.Events.KafkaBrokers)
	}
	if len(cfg.CORSAllowedOrigins) != 2 {
		t.Errorf("CORSAllowedOrigins = %v, want 2 origins", cfg.CORSAllowedOrigins)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "short jwt secret",
			env:     map[string]string{"AUTH_JWT_SECRET": "short"},
			wantErr: "AUTH_JWT_SECRET",
		},
		{
			name:    "unknown driver",
			env:     map[string]string{"AUTH_JWT_SECRET": testSecret, "DB_DRIVER": "oracle"},
			wantErr: "DB_DRIVER",
		},
		{
			name:    "kafka without brokers",
			env:     map[string]string{"AUTH_JWT_SECRET": testSecret, "EVENTS_BACKEND": "kafka"},
			wantErr: "EVENTS_KAFKA_BROKERS",
		},
		{
			name:    "casdoor without endpoint",
			env:     map[string]string{"AUTH_PROVIDER": "casdoor"},
			wantErr: "CASDOOR_ENDPOINT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := LoadConfig()
			if err == nil {
				t.Fatal("LoadConfig() expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to mention %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	tests := []struct {
		name string
		cfg  DatabaseConfig
		want string
	}{
		{
			name: "url override",
			cfg:  DatabaseConfig{Driver: DriverPostgres, URL: "postgres://u:p@db/x"},
			want: "postgres://u:p@db/x",
		},
		{
			name: "mysql",
			cfg:  DatabaseConfig{Driver: DriverMySQL, User: "root", Password: "pw", Host: "db", Port: 3306, Name: "tkj"},
			want: "root:pw@tcp(db:3306)/tkj?charset=utf8mb4&parseTime=True&loc=UTC",
		},
		{
			name: "sqlite",
			cfg:  DatabaseConfig{Driver: DriverSQLite, Path: "/tmp/x.db"},
			want: "file:/tmp/x.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)",
		},
		{
			name: "postgres",
			cfg:  DatabaseConfig{Driver: DriverPostgres, Host: "db", User: "u", Password: "p", Name: "n", Port: 5432, SSLMode: "disable"},
			want: "host=db user=u password=p dbname=n port=5432 sslmode=disable TimeZone=UTC",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.DSN(); got != tt.want {
				t.Errorf("DSN() = %q, want %q", got, tt.want)
			}
		})
	}
}
