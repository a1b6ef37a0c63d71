/*
Config package
*/
package config

import (
	"errors"
	"strings"

	"github.com/spf13/viper"
)

// Config reads settings from a .env file and the process environment.
type Config struct {
	viper *viper.Viper
}

// New reads .env from the working directory and ENV variables.
// A missing .env file is reported through log and is not an error.
func New(log Logger) (*Config, error) {
	v := viper.New()
	v.SetConfigName(".env")
	v.SetConfigType("dotenv")
	v.AddConfigPath(".") // look for config in the working directory

	cfg := NewWithViper(v)

	if err := v.ReadInConfig(); err != nil {
		var typeErr viper.ConfigFileNotFoundError
		if !errors.As(err, &typeErr) {
			return nil, err
		}

		if log != nil {
			log.Warn("The .env file has not been found in the current directory")
		}
	}

	return cfg, nil
}

// NewWithViper wraps v with AutomaticEnv enabled. A nil v gets a fresh instance.
func NewWithViper(v *viper.Viper) *Config {
	if v == nil {
		v = viper.New()
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &Config{viper: v}
}

func (c *Config) SetDefault(key string, value any) {
	c.viper.SetDefault(key, value)
}

func (c *Config) Set(key string, value any) {
	c.viper.Set(key, value)
}

func (c *Config) GetString(key string) string {
	return c.viper.GetString(key)
}

func (c *Config) GetInt(key string) int {
	return c.viper.GetInt(key)
}

func (c *Config) GetBool(key string) bool {
	return c.viper.GetBool(key)
}

func (c *Config) GetStringSlice(key string) []string {
	return c.viper.GetStringSlice(key)
}

// GetStringMapStringSlice decodes a map value. From the environment the value
// is expected as a JSON object, e.g. {"orders.command.create.v1":["async"]}.
func (c *Config) GetStringMapStringSlice(key string) map[string][]string {
	return c.viper.GetStringMapStringSlice(key)
}
