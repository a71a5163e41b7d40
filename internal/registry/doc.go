// Package registry builds and reads the shadcn-compatible component registry.
//
// A build reads every component and hook listed in the catalog from a Zoo
// checkout, rewrites their imports to the default project aliases and
// writes registry.json plus one r/<name>.json per item:
//
//	b := &registry.Builder{Repo: repo, Catalog: cat, Version: "1.2.0"}
//	reg, err := b.BuildFile(ctx, "public/registry.json")
//
// Atoms and molecules become registry:ui items, organisms registry:block
// items and hooks registry:hook items. The all, components and blocks
// views select from the same document.
package registry
