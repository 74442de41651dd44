// Package branding holds the identity values baked into the binary from
// branding.yaml. The CLI name doubles as the name of the hosting component,
// the one entry the lifecycle coordinator never disables or reloads.
package branding

import (
	_ "embed"
	"strings"
	"sync"

	"go.yaml.in/yaml/v3"
)

//go:embed branding.yaml
var brandingYAML []byte

type identity struct {
	CLIName     string `yaml:"cli_name"`
	DisplayName string `yaml:"display_name"`
	Description string `yaml:"description"`
	HomeDir     string `yaml:"home_dir"`
	EnvPrefix   string `yaml:"env_prefix"`
}

// current decodes branding.yaml over built-in values; fields missing from
// the file keep their built-in value.
var current = sync.OnceValue(func() identity {
	id := identity{
		CLIName:     "plugmgr",
		DisplayName: "PlugMgr",
		Description: "Runtime lifecycle manager for host components",
		HomeDir:     ".plugmgr",
		EnvPrefix:   "PLUGMGR",
	}
	_ = yaml.Unmarshal(brandingYAML, &id)
	return id
})

// CLIName is the root command name.
func CLIName() string { return current().CLIName }

// SelfComponent is the name the host registers this binary under.
func SelfComponent() string { return current().CLIName }

func DisplayName() string { return current().DisplayName }

func Description() string { return current().Description }

// HomeDir is the dot-directory under $HOME holding packages, data and state.
func HomeDir() string { return current().HomeDir }

func EnvPrefix() string { return current().EnvPrefix }

// EnvVar qualifies suffix with the env prefix: EnvVar("home") is PLUGMGR_HOME.
func EnvVar(suffix string) string {
	return current().EnvPrefix + "_" + strings.ToUpper(suffix)
}
