package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Local storage backends for the client token slot.
const (
	StoreSQLite = "sqlite"
	StoreFile   = "file"
	StoreMemory = "memory"
)

const (
	apiURLKey     = "campus.api_url"
	storeKey      = "campus.store"
	storePathKey  = "campus.store_path"
	timeoutKey    = "campus.timeout"
	logLevelKey   = "campus.log_level"
	loginPathKey  = "campus.login_path"
	appFolderName = "campus"
)

// ClientConfig is read by the command line client and anything else built on the session library.
type ClientConfig interface {
	GetAPIURL() string
	GetStoreKind() string
	GetStorePath() string
	GetRequestTimeout() time.Duration
	GetLogLevel() string
	GetLoginPath() string
}

func setClientDefaults(v *viper.Viper) {
	v.SetDefault(apiURLKey, "http://localhost:3000/api")
	v.SetDefault(storeKey, StoreSQLite)
	v.SetDefault(storePathKey, "")
	v.SetDefault(timeoutKey, "10s")
	v.SetDefault(logLevelKey, "warn")
	v.SetDefault(loginPathKey, "/login")
}

func (c *Settings) GetAPIURL() string {
	return strings.TrimRight(c.v.GetString(apiURLKey), "/")
}

func (c *Settings) GetStoreKind() string {
	switch kind := strings.ToLower(c.v.GetString(storeKey)); kind {
	case StoreFile, StoreMemory:
		return kind
	default:
		return StoreSQLite
	}
}

// GetStorePath returns where the local storage lives. Defaults to the user config dir.
func (c *Settings) GetStorePath() string {
	if p := c.v.GetString(storePathKey); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	name := "storage.db"
	if c.GetStoreKind() == StoreFile {
		name = "storage.json"
	}
	return filepath.Join(dir, appFolderName, name)
}

// GetRequestTimeout is the transport timeout for every API call.
func (c *Settings) GetRequestTimeout() time.Duration {
	if d := c.v.GetDuration(timeoutKey); d > 0 {
		return d
	}
	return 10 * time.Second
}

func (c *Settings) GetLogLevel() string {
	return c.v.GetString(logLevelKey)
}

func (c *Settings) GetLoginPath() string {
	return c.v.GetString(loginPathKey)
}
