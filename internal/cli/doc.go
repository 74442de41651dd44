// Package cli defines the Cobra command tree for the plugmgr CLI. Each file
// in this package registers one top-level command (enable, reload, load,
// etc.) with the root command. Commands open the local host registry, hand
// the request to the lifecycle coordinator or the loader pipeline, and only
// handle argument parsing and output formatting themselves.
package cli
