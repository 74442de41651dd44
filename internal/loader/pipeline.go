package loader

import (
	"fmt"
	"os"
	"time"

	"github.com/go-logr/logr"

	"github.com/plugmgr/plugmgr/internal/fetch"
	"github.com/plugmgr/plugmgr/internal/host"
	"github.com/plugmgr/plugmgr/internal/manifest"
	"github.com/plugmgr/plugmgr/internal/metrics"
	"github.com/plugmgr/plugmgr/internal/resolver"
)

// Policy controls what a load may do.
type Policy struct {
	// PackagesDir is where acquired packages are placed and where relative
	// local sources are resolved.
	PackagesDir      string
	AllowURL         bool
	AllowLocal       bool
	BlockMissingDeps bool
	// RejectCycles fails the load when resolution had to break a cycle.
	RejectCycles bool
}

// DefaultPolicy returns the policy used when no configuration overrides it.
func DefaultPolicy(packagesDir string) Policy {
	return Policy{
		PackagesDir:      packagesDir,
		AllowURL:         true,
		AllowLocal:       true,
		BlockMissingDeps: true,
	}
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger for load diagnostics.
func WithLogger(l logr.Logger) Option {
	return func(p *Pipeline) {
		p.log = l
	}
}

// WithFetcher sets the downloader used for URL sources.
func WithFetcher(f *fetch.Fetcher) Option {
	return func(p *Pipeline) {
		p.fetcher = f
	}
}

// Pipeline loads packages into a host registry.
type Pipeline struct {
	reg     host.Registry
	policy  Policy
	fetcher *fetch.Fetcher
	log     logr.Logger
}

// New creates a Pipeline over reg.
func New(reg host.Registry, policy Policy, opts ...Option) *Pipeline {
	p := &Pipeline{
		reg:    reg,
		policy: policy,
		log:    logr.Discard(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.fetcher == nil {
		p.fetcher = fetch.New(fetch.WithLogger(p.log))
	}
	return p
}

// Load acquires primary and any extras, then installs primary together with
// the extras it transitively depends on, dependencies first. Extras that
// fail to acquire or describe are skipped and listed in the report. The
// returned error, when non-nil, is a *Error.
func (p *Pipeline) Load(primary string, extras ...string) (report *Report, err error) {
	start := time.Now()
	report = &Report{}
	defer func() {
		result := "ok"
		if err != nil {
			result = string(KindOf(err))
		}
		metrics.LoadsTotal.WithLabelValues(result).Inc()
		metrics.LoadDuration.Observe(time.Since(start).Seconds())
		for _, it := range report.Items {
			metrics.InstallsTotal.WithLabelValues(string(it.Status)).Inc()
		}
	}()

	st, err := newStaging(p.policy.PackagesDir, p.log)
	if err != nil {
		return report, &Error{Kind: KindAcquisition, Source: primary, Err: err}
	}
	defer st.discard()

	root, err := p.acquire(st, primary)
	if err != nil {
		return report, err
	}
	report.Primary = root.Descriptor
	p.log.V(1).Info("described primary package", "source", primary, "name", root.Descriptor.Name, "version", root.Descriptor.Version)

	candidates := p.gather(st, root, extras, report)
	installed := p.installedNames()

	if p.policy.BlockMissingDeps {
		if missing := resolver.FindMissingHardDependencies(root.Descriptor, installed, candidates); len(missing) > 0 {
			return report, &Error{Kind: KindMissingDependencies, Source: root.Descriptor.Name, Missing: missing}
		}
	}

	order, err := resolver.ResolveInstallOrder(root, candidates, installed)
	if err != nil {
		return report, &Error{Kind: KindDescribe, Source: primary, Err: err}
	}
	report.BrokenCycles = order.BrokenCycles
	if len(order.BrokenCycles) > 0 {
		if p.policy.RejectCycles {
			return report, &Error{Kind: KindCycle, Source: root.Descriptor.Name, Cycles: order.BrokenCycles}
		}
		p.log.Info("ignoring cyclic dependencies", "component", root.Descriptor.Name, "edges", fmt.Sprint(order.BrokenCycles))
	}

	return report, p.install(st, order, installed, report)
}

// gather acquires the extra sources and keys every candidate by name. The
// primary always owns its own name; among extras sharing a name the first
// one given wins.
func (p *Pipeline) gather(st *staging, root resolver.Candidate, extras []string, report *Report) map[string]resolver.Candidate {
	candidates := map[string]resolver.Candidate{root.Key(): root}
	for _, src := range extras {
		c, err := p.acquire(st, src)
		if err != nil {
			report.Skipped = append(report.Skipped, SkippedSource{Source: src, Err: err})
			p.log.Info("skipping extra package", "source", src, "error", err.Error())
			continue
		}
		prev, ok := candidates[c.Key()]
		if !ok {
			candidates[c.Key()] = c
			continue
		}
		if manifest.CompareVersions(c.Descriptor, prev.Descriptor) > 0 {
			p.log.Info("ignoring newer duplicate package", "component", c.Descriptor.Name,
				"kept", prev.Descriptor.Version, "ignored", c.Descriptor.Version, "source", src)
		}
	}
	return candidates
}

func (p *Pipeline) installedNames() resolver.NameSet {
	names := resolver.NewNameSet()
	for _, c := range p.reg.Components() {
		names.Add(c.Name())
	}
	return names
}

// install promotes and installs each candidate in order. A package is moved
// into the packages directory only right before its install, and moved out
// again when the host refuses it, so the directory never holds a package
// the host has not accepted.
func (p *Pipeline) install(st *staging, order resolver.Order, installed resolver.NameSet, report *Report) error {
	var failure error
	for _, c := range order.Candidates {
		item := Item{Name: c.Descriptor.Name}
		switch {
		case failure != nil:
			item.Status = ItemNotAttempted
		case installed.Has(c.Descriptor.Name):
			item.Status = ItemSkipped
		default:
			path, err := p.installOne(st, c)
			if err != nil {
				item.Status = ItemFailed
				item.Err = err
				failure = &Error{Kind: KindInstall, Source: c.Descriptor.Name, Err: err}
				p.log.Error(err, "install failed", "component", c.Descriptor.Name)
				break
			}
			item.Status = ItemInstalled
			item.Path = path
			p.log.V(1).Info("installed component", "component", c.Descriptor.Name, "path", path)
		}
		report.Items = append(report.Items, item)
	}
	return failure
}

func (p *Pipeline) installOne(st *staging, c resolver.Candidate) (string, error) {
	path, moved, err := st.promote(c.Path)
	if err != nil {
		return "", err
	}
	if _, err := p.reg.Install(path); err != nil {
		if _, registered := p.reg.Lookup(c.Descriptor.Name); moved && !registered {
			if rmErr := os.Remove(path); rmErr != nil {
				p.log.Error(rmErr, "removing refused package", "path", path)
			}
		}
		return "", err
	}
	return path, nil
}
