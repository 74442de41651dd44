// Package config manages user-level settings stored at ~/.plugmgr/config.yaml.
// It owns the policy switches consumed by the lifecycle coordinator and the
// loader pipeline (self/system protection, smart reload, load source
// toggles) and exposes them both as raw keys for the `config` command and as
// a typed Settings snapshot.
package config
