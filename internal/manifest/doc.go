// Package manifest parses and validates component descriptors. A component
// package is a zip archive carrying a YAML manifest at its root
// (component.yaml, with component.yml and plugin.yml accepted as fallbacks).
// Manifests are validated against the embedded JSON schema before they are
// decoded into an immutable Descriptor.
package manifest
