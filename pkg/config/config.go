package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// ErrMissingConfig is returned by the Validate methods when a required
// setting is absent.
var ErrMissingConfig = errors.New("missing configuration")

// Configuration keys.
const (
	KeyMongoURI            = "mongo.uri"
	KeyMongoDatabase       = "mongo.database"
	KeyRawCollection       = "mongo.raw_collection"
	KeyProcessedCollection = "mongo.processed_collection"

	KeyLLMAPIKey       = "llm.api_key"
	KeyLLMBaseURL      = "llm.base_url"
	KeyLLMModel        = "llm.model"
	KeyLLMTemperature  = "llm.temperature"
	KeyLLMChunkTimeout = "llm.chunk_timeout"

	KeyChunkMaxChars    = "chunk.max_chars"
	KeySplitMaxSegments = "split.max_segments"
	KeyUploadWorkers    = "upload.workers"

	KeyLogLevel       = "log.level"
	KeyLogDevelopment = "log.development"

	KeyPostgresDSN      = "postgres.dsn"
	KeySupabaseURL      = "supabase.url"
	KeySupabaseKey      = "supabase.key"
	KeySupabasePassword = "supabase.password"
)

// Configuration provides type-safe access to application settings
type Configuration struct {
	viper *viper.Viper
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyMongoDatabase, "parliamentary_graph")
	v.SetDefault(KeyRawCollection, "raw_videos")
	v.SetDefault(KeyProcessedCollection, "videos")

	v.SetDefault(KeyLLMBaseURL, "https://generativelanguage.googleapis.com/v1beta/openai/")
	v.SetDefault(KeyLLMModel, "gemini-2.5-flash")
	v.SetDefault(KeyLLMTemperature, 1.0)
	v.SetDefault(KeyLLMChunkTimeout, 2*time.Minute)

	v.SetDefault(KeyChunkMaxChars, 10000)
	v.SetDefault(KeySplitMaxSegments, 5000)
	v.SetDefault(KeyUploadWorkers, 4)

	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogDevelopment, false)
}

func bindEnv(v *viper.Viper) {
	v.SetEnvPrefix("JANSETU")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Names used by the existing deployment scripts.
	_ = v.BindEnv(KeyMongoURI, "JANSETU_MONGO_URI", "MONGODB_CONNECTION_STRING")
	_ = v.BindEnv(KeyLLMAPIKey, "JANSETU_LLM_API_KEY", "GOOGLE_API_KEY")
	_ = v.BindEnv(KeyPostgresDSN, "JANSETU_POSTGRES_DSN", "DATABASE_URL")
	_ = v.BindEnv(KeySupabaseURL, "JANSETU_SUPABASE_URL", "SUPABASE_URL")
	_ = v.BindEnv(KeySupabaseKey, "JANSETU_SUPABASE_KEY", "SUPABASE_KEY")
	_ = v.BindEnv(KeySupabasePassword, "JANSETU_SUPABASE_PASSWORD", "SUPABASE_DB_PASSWORD")
}

// NewConfiguration creates a Configuration with default settings overridden
// by environment variables.
func NewConfiguration() *Configuration {
	v := viper.New()
	setDefaults(v)
	bindEnv(v)
	return &Configuration{viper: v}
}

// NewConfigurationFromFile creates a Configuration from a config file on fs,
// with environment variables taking precedence over the file.
func NewConfigurationFromFile(fs afero.Fs, configFile string) (*Configuration, error) {
	c := NewConfiguration()
	c.viper.SetFs(fs)
	c.viper.SetConfigFile(configFile)

	if err := c.viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
	}
	return c, nil
}

// Load reads configFile when it is non-empty, otherwise uses defaults and
// the environment only.
func Load(configFile string) (*Configuration, error) {
	if configFile == "" {
		return NewConfiguration(), nil
	}
	return NewConfigurationFromFile(afero.NewOsFs(), configFile)
}

// BindFlags binds command-line flags to configuration keys. A flag that was
// set on the command line wins over every other source. Flags named in
// bindings but missing from fs are an error.
func (c *Configuration) BindFlags(fs *pflag.FlagSet, bindings map[string]string) error {
	for key, name := range bindings {
		flag := fs.Lookup(name)
		if flag == nil {
			return fmt.Errorf("flag --%s is not defined", name)
		}
		if err := c.viper.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("failed to bind flag --%s: %w", name, err)
		}
	}
	return nil
}

// Set overrides a key.
func (c *Configuration) Set(key string, value any) {
	c.viper.Set(key, value)
}

func (c *Configuration) GetMongoURI() string {
	return c.viper.GetString(KeyMongoURI)
}

func (c *Configuration) GetMongoDatabase() string {
	return c.viper.GetString(KeyMongoDatabase)
}

func (c *Configuration) GetRawCollection() string {
	return c.viper.GetString(KeyRawCollection)
}

func (c *Configuration) GetProcessedCollection() string {
	return c.viper.GetString(KeyProcessedCollection)
}

func (c *Configuration) GetLLMAPIKey() string {
	return c.viper.GetString(KeyLLMAPIKey)
}

func (c *Configuration) GetLLMBaseURL() string {
	return c.viper.GetString(KeyLLMBaseURL)
}

func (c *Configuration) GetLLMModel() string {
	return c.viper.GetString(KeyLLMModel)
}

func (c *Configuration) GetLLMTemperature() float64 {
	return c.viper.GetFloat64(KeyLLMTemperature)
}

// GetLLMChunkTimeout returns the bound on one correction call.
func (c *Configuration) GetLLMChunkTimeout() time.Duration {
	return c.viper.GetDuration(KeyLLMChunkTimeout)
}

func (c *Configuration) GetChunkMaxChars() int {
	return c.viper.GetInt(KeyChunkMaxChars)
}

func (c *Configuration) GetSplitMaxSegments() int {
	return c.viper.GetInt(KeySplitMaxSegments)
}

// GetUploadWorkers returns the number of concurrent upserts, at least 1.
func (c *Configuration) GetUploadWorkers() int {
	return max(c.viper.GetInt(KeyUploadWorkers), 1)
}

func (c *Configuration) GetLogLevel() string {
	return c.viper.GetString(KeyLogLevel)
}

func (c *Configuration) GetLogDevelopment() bool {
	return c.viper.GetBool(KeyLogDevelopment)
}

func (c *Configuration) GetPostgresDSN() string {
	return c.viper.GetString(KeyPostgresDSN)
}

func (c *Configuration) GetSupabaseURL() string {
	return c.viper.GetString(KeySupabaseURL)
}

func (c *Configuration) GetSupabaseKey() string {
	return c.viper.GetString(KeySupabaseKey)
}

func (c *Configuration) GetSupabasePassword() string {
	return c.viper.GetString(KeySupabasePassword)
}

// ValidateMongo reports whether the document store can be reached with the
// current settings.
func (c *Configuration) ValidateMongo() error {
	if c.GetMongoURI() == "" {
		return fmt.Errorf("%w: MongoDB connection string (set MONGODB_CONNECTION_STRING or JANSETU_MONGO_URI)", ErrMissingConfig)
	}
	if c.GetMongoDatabase() == "" {
		return fmt.Errorf("%w: MongoDB database name", ErrMissingConfig)
	}
	return nil
}

// ValidateLLM reports whether the correction service can be called with the
// current settings.
func (c *Configuration) ValidateLLM() error {
	if c.GetLLMAPIKey() == "" {
		return fmt.Errorf("%w: correction service API key (set GOOGLE_API_KEY or JANSETU_LLM_API_KEY)", ErrMissingConfig)
	}
	if c.GetLLMModel() == "" {
		return fmt.Errorf("%w: correction model name", ErrMissingConfig)
	}
	return nil
}

// ValidateMirror reports whether a relational mirror target is configured.
func (c *Configuration) ValidateMirror() error {
	if c.GetPostgresDSN() == "" && c.GetSupabaseURL() == "" {
		return fmt.Errorf("%w: postgres DSN or Supabase URL", ErrMissingConfig)
	}
	return nil
}
