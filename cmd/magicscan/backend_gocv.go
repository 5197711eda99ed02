//go:build gocv

package main

import (
	"github.com/ironsheep/magicscan/internal/config"
	"github.com/ironsheep/magicscan/internal/cvscan"
	"github.com/ironsheep/magicscan/internal/scan"
)

func init() {
	backends["opencv"] = func(cfg *config.Config, opts *scan.Options) {
		edges := cfg.EdgeOptions()
		opts.Locator = cvscan.NewLocator(edges.Low, edges.High, cfg.DetectorOptions())
		opts.Warper = cvscan.Warper{}
	}
}
