package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/plugmgr/plugmgr/internal/branding"
	"github.com/plugmgr/plugmgr/internal/userdata"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

const (
	fileName = "config"
	fileType = "yaml"
)

// Setting keys.
const (
	KeyAllowDisableCore     = "allow-disable-core-components"
	KeyBlockDisableWithDeps = "block-disable-with-dependents"
	KeySmartReload          = "smart-reload"
	KeyRestoreSnapshot      = "smart-reload-restore-snapshot"
	KeyReservedComponents   = "reserved-components"
	KeyLoadAllowURL         = "load-allow-url"
	KeyLoadAllowLocal       = "load-allow-local"
	KeyLoadBlockMissingDeps = "load-block-missing-deps"
	KeyLoadRejectCycles     = "load-reject-cycles"
	KeyLoadFetchRetries     = "load-fetch-retries"
	KeyPackagesDir          = "packages-dir"
)

var (
	// ErrUnknownKey is returned by Set for a key that is not a known setting.
	ErrUnknownKey = errors.New("unknown config key")
	// ErrInvalidValue is returned for a value that does not fit its key's
	// type, whether passed to Set or read by Load.
	ErrInvalidValue = errors.New("invalid value")
)

// DefaultReservedComponents are the host-platform names protected from
// disable unless allow-disable-core-components is set.
var DefaultReservedComponents = []string{"host", "runtime", "platform", "core"}

var defaults = map[string]interface{}{
	KeyAllowDisableCore:     false,
	KeyBlockDisableWithDeps: true,
	KeySmartReload:          true,
	KeyRestoreSnapshot:      false,
	KeyReservedComponents:   DefaultReservedComponents,
	KeyLoadAllowURL:         true,
	KeyLoadAllowLocal:       true,
	KeyLoadBlockMissingDeps: true,
	KeyLoadRejectCycles:     false,
	KeyLoadFetchRetries:     2,
	KeyPackagesDir:          "",
}

// Settings is a typed snapshot of the current configuration.
type Settings struct {
	AllowDisableCore           bool
	BlockDisableWithDependents bool
	SmartReload                bool
	RestoreSnapshot            bool
	ReservedComponents         []string
	LoadAllowURL               bool
	LoadAllowLocal             bool
	LoadBlockMissingDeps       bool
	LoadRejectCycles           bool
	LoadFetchRetries           int
	PackagesDir                string
}

// Dir returns the path to the config directory (~/.plugmgr/, or PLUGMGR_HOME).
func Dir() string {
	dir, err := userdata.GetHomeRoot()
	if err != nil {
		return filepath.Join(".", branding.HomeDir())
	}
	return dir
}

// FilePath returns the full path to the config file (~/.plugmgr/config.yaml).
func FilePath() string {
	return filepath.Join(Dir(), fileName+"."+fileType)
}

// EnsureDir creates the config directory if it does not exist.
func EnsureDir() error {
	dir := Dir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}
	return nil
}

// SetDefaults registers the default value of every known key.
func SetDefaults() {
	for key, value := range defaults {
		viper.SetDefault(key, value)
	}
}

// Load initializes Viper to read from the config file and environment.
// Environment variables use the PLUGMGR_ prefix with dashes replaced by
// underscores (PLUGMGR_SMART_RELOAD=false). A missing config file is not an
// error; an unreadable one, or a value of the wrong type, is.
func Load() error {
	SetDefaults()
	viper.SetConfigFile(FilePath())
	viper.SetConfigType(fileType)
	viper.SetEnvPrefix(branding.EnvPrefix())
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("reading config %s: %w", FilePath(), err)
		}
	}

	for _, key := range Keys() {
		if _, err := convert(key, viper.Get(key)); err != nil {
			return err
		}
	}
	return nil
}

// Get returns a config value by key. Returns empty string if not set.
func Get(key string) string {
	if isListKey(key) {
		return strings.Join(viper.GetStringSlice(key), ",")
	}
	return viper.GetString(key)
}

// Set validates value against the type of key, stores it and saves the
// config file. List keys accept a comma-separated value.
func Set(key, value string) error {
	if !IsKnown(key) {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	typed, err := convert(key, value)
	if err != nil {
		return err
	}
	if err := EnsureDir(); err != nil {
		return err
	}
	viper.Set(key, typed)

	configFile := FilePath()

	// Create the file if it doesn't exist.
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("creating config file %s: %w", configFile, err)
		}
		f.Close()
	}

	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// Keys returns every known setting key in sorted order.
func Keys() []string {
	keys := make([]string, 0, len(defaults))
	for k := range defaults {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// IsKnown reports whether key is a recognised setting.
func IsKnown(key string) bool {
	_, ok := defaults[key]
	return ok
}

// Current returns the typed settings resolved from defaults, the config file
// and the environment.
func Current() Settings {
	return Settings{
		AllowDisableCore:           viper.GetBool(KeyAllowDisableCore),
		BlockDisableWithDependents: viper.GetBool(KeyBlockDisableWithDeps),
		SmartReload:                viper.GetBool(KeySmartReload),
		RestoreSnapshot:            viper.GetBool(KeyRestoreSnapshot),
		ReservedComponents:         viper.GetStringSlice(KeyReservedComponents),
		LoadAllowURL:               viper.GetBool(KeyLoadAllowURL),
		LoadAllowLocal:             viper.GetBool(KeyLoadAllowLocal),
		LoadBlockMissingDeps:       viper.GetBool(KeyLoadBlockMissingDeps),
		LoadRejectCycles:           viper.GetBool(KeyLoadRejectCycles),
		LoadFetchRetries:           viper.GetInt(KeyLoadFetchRetries),
		PackagesDir:                viper.GetString(KeyPackagesDir),
	}
}

// convert coerces v to the type of key's default.
func convert(key string, v interface{}) (interface{}, error) {
	switch defaults[key].(type) {
	case bool:
		b, err := cast.ToBoolE(v)
		if err != nil {
			return nil, fmt.Errorf("%w %q for %s: want true or false", ErrInvalidValue, fmt.Sprint(v), key)
		}
		return b, nil
	case int:
		n, err := cast.ToIntE(v)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%w %q for %s: want a non-negative integer", ErrInvalidValue, fmt.Sprint(v), key)
		}
		return n, nil
	case []string:
		if s, ok := v.(string); ok {
			return splitList(s), nil
		}
		l, err := cast.ToStringSliceE(v)
		if err != nil {
			return nil, fmt.Errorf("%w %q for %s: want a list of names", ErrInvalidValue, fmt.Sprint(v), key)
		}
		return l, nil
	default:
		return cast.ToString(v), nil
	}
}

func isListKey(key string) bool {
	return key == KeyReservedComponents
}

// splitList turns "a, b,,c" into [a b c].
func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
