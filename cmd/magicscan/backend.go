package main

import (
	"fmt"
	"sort"

	"github.com/ironsheep/magicscan/internal/config"
	"github.com/ironsheep/magicscan/internal/scan"
)

// backendFunc installs a Locator and Warper into opts.
type backendFunc func(cfg *config.Config, opts *scan.Options)

// backends maps a -backend name to its installer. The pure-Go pipeline is
// the scan package default, so "go" leaves opts untouched. Builds with the
// gocv tag add "opencv".
var backends = map[string]backendFunc{
	"go": func(*config.Config, *scan.Options) {},
}

func applyBackend(name string, cfg *config.Config, opts *scan.Options) error {
	b, ok := backends[name]
	if !ok {
		return fmt.Errorf("unknown backend %q (available: %v)", name, backendNames())
	}
	b(cfg, opts)
	return nil
}

func backendNames() []string {
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
