package config

import (
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfiguration_Defaults(t *testing.T) {
	t.Run("should provide pipeline defaults", func(t *testing.T) {
		// Arrange
		cfg := NewConfiguration()

		// Act & Assert
		assert.Equal(t, "parliamentary_graph", cfg.GetMongoDatabase())
		assert.Equal(t, "raw_videos", cfg.GetRawCollection())
		assert.Equal(t, "videos", cfg.GetProcessedCollection())
		assert.Equal(t, 10000, cfg.GetChunkMaxChars())
		assert.Equal(t, 5000, cfg.GetSplitMaxSegments())
		assert.Equal(t, 2*time.Minute, cfg.GetLLMChunkTimeout())
		assert.Equal(t, "info", cfg.GetLogLevel())
		assert.InDelta(t, 1.0, cfg.GetLLMTemperature(), 1e-9)
	})

	t.Run("should clamp upload workers to at least one", func(t *testing.T) {
		cfg := NewConfiguration()
		cfg.Set(KeyUploadWorkers, 0)

		assert.Equal(t, 1, cfg.GetUploadWorkers())
	})
}

func TestConfiguration_Env(t *testing.T) {
	t.Run("should read legacy environment names", func(t *testing.T) {
		// Arrange
		t.Setenv("MONGODB_CONNECTION_STRING", "mongodb://db.example:27017")
		t.Setenv("GOOGLE_API_KEY", "key-123")

		// Act
		cfg := NewConfiguration()

		// Assert
		assert.Equal(t, "mongodb://db.example:27017", cfg.GetMongoURI())
		assert.Equal(t, "key-123", cfg.GetLLMAPIKey())
		assert.NoError(t, cfg.ValidateMongo())
		assert.NoError(t, cfg.ValidateLLM())
	})

	t.Run("should read prefixed environment names", func(t *testing.T) {
		t.Setenv("JANSETU_CHUNK_MAX_CHARS", "4000")
		t.Setenv("JANSETU_MONGO_DATABASE", "staging")

		cfg := NewConfiguration()

		assert.Equal(t, 4000, cfg.GetChunkMaxChars())
		assert.Equal(t, "staging", cfg.GetMongoDatabase())
	})
}

func TestConfiguration_File(t *testing.T) {
	t.Run("should load settings from a config file", func(t *testing.T) {
		// Arrange
		fs := afero.NewMemMapFs()
		content := `mongo:
  uri: "mongodb://file.example:27017"
llm:
  model: "gemini-2.0-flash"
  chunk_timeout: 45s
upload:
  workers: 8
`
		require.NoError(t, afero.WriteFile(fs, "/etc/jansetu/config.yaml", []byte(content), 0o644))

		// Act
		cfg, err := NewConfigurationFromFile(fs, "/etc/jansetu/config.yaml")

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "mongodb://file.example:27017", cfg.GetMongoURI())
		assert.Equal(t, "gemini-2.0-flash", cfg.GetLLMModel())
		assert.Equal(t, 45*time.Second, cfg.GetLLMChunkTimeout())
		assert.Equal(t, 8, cfg.GetUploadWorkers())
	})

	t.Run("should return error for non-existent config file", func(t *testing.T) {
		cfg, err := NewConfigurationFromFile(afero.NewMemMapFs(), "/missing.yaml")

		assert.Error(t, err)
		assert.Nil(t, cfg)
		assert.Contains(t, err.Error(), "failed to read config file")
	})
}

func TestConfiguration_BindFlags(t *testing.T) {
	t.Run("should let flags override defaults", func(t *testing.T) {
		// Arrange
		cfg := NewConfiguration()
		fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
		fs.Int("max-chars", 10000, "")
		fs.String("database", "", "")
		require.NoError(t, fs.Parse([]string{"--max-chars", "2500", "--database", "lok_sabha"}))

		// Act
		err := cfg.BindFlags(fs, map[string]string{
			KeyChunkMaxChars: "max-chars",
			KeyMongoDatabase: "database",
		})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, 2500, cfg.GetChunkMaxChars())
		assert.Equal(t, "lok_sabha", cfg.GetMongoDatabase())
	})

	t.Run("should reject unknown flags", func(t *testing.T) {
		cfg := NewConfiguration()
		fs := pflag.NewFlagSet("test", pflag.ContinueOnError)

		err := cfg.BindFlags(fs, map[string]string{KeyLogLevel: "log-level"})

		assert.Error(t, err)
	})
}

func TestConfiguration_Validate(t *testing.T) {
	t.Run("should report missing mongo uri", func(t *testing.T) {
		t.Setenv("MONGODB_CONNECTION_STRING", "")
		t.Setenv("JANSETU_MONGO_URI", "")
		cfg := NewConfiguration()

		err := cfg.ValidateMongo()

		assert.ErrorIs(t, err, ErrMissingConfig)
	})

	t.Run("should report missing api key", func(t *testing.T) {
		t.Setenv("GOOGLE_API_KEY", "")
		t.Setenv("JANSETU_LLM_API_KEY", "")
		cfg := NewConfiguration()

		err := cfg.ValidateLLM()

		assert.ErrorIs(t, err, ErrMissingConfig)
	})

	t.Run("should report missing mirror target", func(t *testing.T) {
		cfg := NewConfiguration()
		cfg.Set(KeyPostgresDSN, "")
		cfg.Set(KeySupabaseURL, "")

		assert.ErrorIs(t, cfg.ValidateMirror(), ErrMissingConfig)
	})
}
