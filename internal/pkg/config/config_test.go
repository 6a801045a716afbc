package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func baseValidConfig() AppConfig {
	return AppConfig{
		Server: ServerConfig{Port: 8080, ReadHeaderTimeoutSeconds: 5},
		Mongo: MongoConfig{
			URI:         "cluster0.example.mongodb.net",
			DBName:      "loan_mpesa",
			MinPoolSize: 5,
			MaxPoolSize: 20,
		},
		Redis: RedisConfig{Addr: "localhost:6379"},
		Kafka: KafkaConfig{
			Server:            "localhost:9092",
			PaymentEventTopic: "loan-fee-payment-events",
		},
		Gateway: GatewayConfig{
			InitiateURL:            "https://gateway.example.com/api",
			StatusURL:              "https://gateway.example.com/api/transaction-status",
			InitiateTimeoutSeconds: 15,
			StatusTimeoutSeconds:   20,
			InitiateTimeout:        15 * time.Second,
			StatusTimeout:          20 * time.Second,
		},
		Payment: PaymentConfig{
			PollIntervalSeconds:     10,
			MaxPollDurationSeconds:  300,
			TransientErrorThreshold: 3,
			SessionTTLMinutes:       30,
			PollInterval:            10 * time.Second,
			MaxPollDuration:         5 * time.Minute,
			SessionTTL:              30 * time.Minute,
		},
		Loan: LoanConfig{
			Limit:         27000,
			Minimum:       1000,
			Step:          500,
			RepaymentDays: 30,
			FeeTiers:      DefaultFeeTiers(),
		},
		Worker: WorkerConfig{PoolSize: 4},
	}
}

func writeTempConfig(t *testing.T, cfg AppConfig) string {
	t.Helper()
	data, err := yaml.Marshal(cfg)
	require.NoError(t, err)
	tmp := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(tmp, data, 0644))
	return tmp
}

func TestValidateConfigErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *AppConfig)
	}{
		{"min pool size too low", func(c *AppConfig) { c.Mongo.MinPoolSize = 1 }},
		{"max pool size too high", func(c *AppConfig) { c.Mongo.MaxPoolSize = 100 }},
		{"missing gateway url", func(c *AppConfig) { c.Gateway.StatusURL = "" }},
		{"initiate timeout too long", func(c *AppConfig) { c.Gateway.InitiateTimeout = 30 * time.Second }},
		{"status timeout too short", func(c *AppConfig) { c.Gateway.StatusTimeout = 5 * time.Second }},
		{"poll interval too short", func(c *AppConfig) { c.Payment.PollInterval = time.Second }},
		{"poll interval too long", func(c *AppConfig) { c.Payment.PollInterval = 11 * time.Second }},
		{"max duration above five minutes", func(c *AppConfig) { c.Payment.MaxPollDuration = 6 * time.Minute }},
		{"zero error threshold", func(c *AppConfig) { c.Payment.TransientErrorThreshold = 0 }},
		{"no workers", func(c *AppConfig) { c.Worker.PoolSize = 0 }},
		{"limit below minimum", func(c *AppConfig) { c.Loan.Limit = 500 }},
		{"overlapping fee tiers", func(c *AppConfig) {
			c.Loan.FeeTiers = []FeeTierConfig{{Min: 1000, Max: 5000, Fee: 1}, {Min: 4000, Max: 9000, Fee: 2}}
		}},
		{"fee not below tier minimum", func(c *AppConfig) {
			c.Loan.FeeTiers = []FeeTierConfig{{Min: 1000, Max: 5000, Fee: 1000}}
		}},
		{"inverted fee tier", func(c *AppConfig) {
			c.Loan.FeeTiers = []FeeTierConfig{{Min: 5000, Max: 1000, Fee: 1}}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := baseValidConfig()
			tt.mutate(&c)
			assert.Error(t, validateConfig(&c))
		})
	}
}

func TestValidateConfigSuccess(t *testing.T) {
	c := baseValidConfig()
	assert.NoError(t, validateConfig(&c))
}

func TestLoadFromConfigFilePath(t *testing.T) {
	t.Run("loads file and applies defaults", func(t *testing.T) {
		cfg := baseValidConfig()
		cfg.Payment = PaymentConfig{}
		cfg.Loan.FeeTiers = nil
		path := writeTempConfig(t, cfg)

		loaded, err := LoadFromConfigFilePath(path)
		require.NoError(t, err)

		assert.Equal(t, 10*time.Second, loaded.Payment.PollInterval)
		assert.Equal(t, 5*time.Minute, loaded.Payment.MaxPollDuration)
		assert.Equal(t, 3, loaded.Payment.TransientErrorThreshold)
		assert.Equal(t, DefaultFeeTiers(), loaded.Loan.FeeTiers)
		assert.Equal(t, 30*time.Minute, loaded.Mongo.MaxConnIdleTime)
	})

	t.Run("env overrides yaml", func(t *testing.T) {
		t.Setenv("PAYMENT_POLL_INTERVAL_SECONDS", "5")
		t.Setenv("GATEWAY_API_KEY", "secret")
		path := writeTempConfig(t, baseValidConfig())

		loaded, err := LoadFromConfigFilePath(path)
		require.NoError(t, err)

		assert.Equal(t, 5*time.Second, loaded.Payment.PollInterval)
		assert.Equal(t, "secret", loaded.Gateway.APIKey)
	})

	t.Run("invalid values rejected", func(t *testing.T) {
		t.Setenv("PAYMENT_POLL_INTERVAL_SECONDS", "2")
		path := writeTempConfig(t, baseValidConfig())

		_, err := LoadFromConfigFilePath(path)
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadFromConfigFilePath(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.Error(t, err)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		tmp := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(tmp, []byte("server: [unterminated"), 0644))

		_, err := LoadFromConfigFilePath(tmp)
		assert.Error(t, err)
	})
}

func TestLoadFromConfig_UsesConfigPath(t *testing.T) {
	path := writeTempConfig(t, baseValidConfig())
	t.Setenv("CONFIG_PATH", path)

	cfg, err := LoadFromConfig()
	require.NoError(t, err)
	assert.Equal(t, "loan_mpesa", cfg.Mongo.DBName)
}

func TestGetEnvOrDefault(t *testing.T) {
	t.Setenv("TEST_INT", "42")
	t.Setenv("TEST_BAD_INT", "forty-two")
	t.Setenv("TEST_UINT", "7")
	t.Setenv("TEST_BLANK", "   ")

	assert.Equal(t, 42, GetEnvOrDefaultAsInt("TEST_INT", 1))
	assert.Equal(t, 1, GetEnvOrDefaultAsInt("TEST_BAD_INT", 1))
	assert.Equal(t, 1, GetEnvOrDefaultAsInt("TEST_UNSET_INT", 1))
	assert.Equal(t, uint64(7), GetEnvOrDefaultAsUint64("TEST_UINT", 1))
	assert.Equal(t, "fallback", GetEnvOrDefaultAsString("TEST_BLANK", "fallback"))
}
