// Package userdata resolves the ~/.plugmgr/ directory layout: the packages
// directory the host discovers component archives from, the per-component
// data directories, and the host's enabled-state file. Every location can be
// overridden through a PLUGMGR_* environment variable.
package userdata
