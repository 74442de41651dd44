package cli

import (
	"fmt"

	"github.com/plugmgr/plugmgr/internal/branding"
	"github.com/plugmgr/plugmgr/internal/config"
	"github.com/plugmgr/plugmgr/internal/fetch"
	"github.com/plugmgr/plugmgr/internal/host"
	"github.com/plugmgr/plugmgr/internal/lifecycle"
	"github.com/plugmgr/plugmgr/internal/loader"
	"github.com/plugmgr/plugmgr/internal/manifest"
	"github.com/plugmgr/plugmgr/internal/userdata"
)

// session bundles what a command needs to act on the local host.
type session struct {
	settings    config.Settings
	packagesDir string
	reg         *host.Local
}

// openSession resolves the home layout from configuration and opens the
// directory-backed registry.
func openSession() (*session, error) {
	settings := config.Current()
	if err := userdata.EnsureLayout(settings.PackagesDir); err != nil {
		return nil, err
	}

	packagesDir := settings.PackagesDir
	if packagesDir == "" {
		dir, err := userdata.GetPackagesDir()
		if err != nil {
			return nil, err
		}
		packagesDir = dir
	}
	dataRoot, err := userdata.GetDataRoot()
	if err != nil {
		return nil, err
	}
	statePath, err := userdata.GetStatePath()
	if err != nil {
		return nil, err
	}

	reg, err := host.OpenLocal(host.LocalOptions{
		PackagesDir: packagesDir,
		DataRoot:    dataRoot,
		StatePath:   statePath,
		Self: &manifest.Descriptor{
			Name:        branding.SelfComponent(),
			Version:     build.Version,
			Description: branding.Description(),
		},
		Log: log,
	})
	if err != nil {
		return nil, fmt.Errorf("opening registry: %w", err)
	}
	return &session{settings: settings, packagesDir: packagesDir, reg: reg}, nil
}

func (s *session) coordinator() *lifecycle.Coordinator {
	return lifecycle.New(s.reg, lifecycle.Policy{
		Self:                       branding.SelfComponent(),
		ReservedNames:              s.settings.ReservedComponents,
		AllowDisableCore:           s.settings.AllowDisableCore,
		BlockDisableWithDependents: s.settings.BlockDisableWithDependents,
		SmartReload:                s.settings.SmartReload,
		RestoreSnapshot:            s.settings.RestoreSnapshot,
	}, lifecycle.WithLogger(log))
}

func (s *session) pipeline() *loader.Pipeline {
	f := fetch.New(fetch.WithRetries(s.settings.LoadFetchRetries), fetch.WithLogger(log))
	return loader.New(s.reg, loader.Policy{
		PackagesDir:      s.packagesDir,
		AllowURL:         s.settings.LoadAllowURL,
		AllowLocal:       s.settings.LoadAllowLocal,
		BlockMissingDeps: s.settings.LoadBlockMissingDeps,
		RejectCycles:     s.settings.LoadRejectCycles,
	}, loader.WithLogger(log), loader.WithFetcher(f))
}

// lookup finds name or returns an error carrying close matches.
func (s *session) lookup(name string) (*host.Component, error) {
	if c, ok := s.reg.Lookup(name); ok {
		return c, nil
	}
	return nil, notFoundError(name, s.names())
}

func (s *session) names() []string {
	comps := s.reg.Components()
	names := make([]string, len(comps))
	for i, c := range comps {
		names[i] = c.Name()
	}
	return names
}
