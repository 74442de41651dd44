// Package host is the boundary between plugmgr and the platform that runs
// components. Registry is the only view the lifecycle coordinator and the
// loader have of installed components and their enabled state; the host
// stays the authority and nothing above it caches that state.
//
// Two registries are provided. Memory keeps everything in process and
// journals every transition, which makes it the registry of choice for
// embedding and for tests. Local is backed by a packages directory and a
// small state file, and is what the plugmgr command operates on.
package host
