// Package loader brings new component packages into a running host. A load
// acquires the primary package (downloading it when given a URL), describes
// it, gathers any extra packages supplied alongside it, checks that every
// hard dependency is satisfiable, resolves an install order and installs the
// packages one by one. Nothing touches the host registry until the order has
// been resolved; an install failure stops the sequence without rolling back
// what was already installed.
package loader
