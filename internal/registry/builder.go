package registry

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/mod/semver"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/flowtomic/zoo/internal/catalog"
	"github.com/flowtomic/zoo/internal/config"
	"github.com/flowtomic/zoo/internal/errors"
	"github.com/flowtomic/zoo/internal/transplant"
)

// DefaultVersion is used when a build is given no version.
const DefaultVersion = "0.1.0"

// Builder turns a checkout and its catalog into a Registry.
type Builder struct {
	// Repo is the root of the Zoo checkout.
	Repo string

	Catalog *catalog.Catalog

	// Version is a semver string, with or without a leading "v".
	Version string

	// Strict fails the build on a missing source file instead of warning.
	Strict bool

	// Concurrency bounds parallel file reads. Zero means 8.
	Concurrency int

	Logger *zap.Logger
}

// source is one file to read for one item.
type source struct {
	item, file int
	path       string
	dest       string
}

// Build reads every catalog file and returns the registry. Items keep
// catalog order: components first, then hooks.
func (b *Builder) Build(ctx context.Context) (*Registry, error) {
	logger := b.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	version, err := normalizeVersion(b.Version)
	if err != nil {
		return nil, err
	}

	title := cases.Title(language.English)
	rewriter := transplant.NewRewriter(config.New().Aliases)

	var items []Item
	var sources []source

	for _, info := range b.Catalog.Components {
		typ := TypeForTier(info.Type)
		it := Item{
			Name:                 info.Name,
			Type:                 typ,
			Title:                title.String(strings.ReplaceAll(info.Name, "-", " ")),
			Description:          info.Description,
			Dependencies:         info.Dependencies,
			RegistryDependencies: info.RegistryDependencies,
		}
		for _, f := range info.Files {
			sources = append(sources, source{
				item: len(items),
				file: len(it.Files),
				path: filepath.Join(info.SourceDir(b.Repo), filepath.FromSlash(f)),
				dest: path.Join("ui", info.Name, f),
			})
			it.Files = append(it.Files, File{Type: typ})
		}
		items = append(items, it)
	}

	for _, h := range b.Catalog.Hooks {
		it := Item{
			Name:         h.Name,
			Type:         TypeHook,
			Title:        title.String(strings.ReplaceAll(h.Name, "-", " ")),
			Description:  h.Description,
			Dependencies: h.Dependencies,
			Files:        []File{{Type: TypeHook}},
		}
		sources = append(sources, source{
			item: len(items),
			path: h.SourceFile(b.Repo),
			dest: path.Join("hooks", h.File),
		})
		items = append(items, it)
	}

	missing := make([]bool, len(sources))
	g, gctx := errgroup.WithContext(ctx)
	limit := b.Concurrency
	if limit <= 0 {
		limit = 8
	}
	g.SetLimit(limit)

	for n, src := range sources {
		n, src := n, src
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			content, err := transplant.ReadRewritten(src.path, rewriter)
			if err != nil {
				if errors.HasCode(err, "E121") && !b.Strict {
					missing[n] = true
					return nil
				}
				return err
			}
			items[src.item].Files[src.file] = File{
				Path:    src.dest,
				Type:    items[src.item].Files[src.file].Type,
				Content: content,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if errors.HasCode(err, "E121") {
			return nil, errors.New("E131").
				WithDetail("strict build: " + err.Error()).
				Wrap(err)
		}
		return nil, err
	}

	// Drop missing files, keeping order.
	for n := len(sources) - 1; n >= 0; n-- {
		if !missing[n] {
			continue
		}
		src := sources[n]
		logger.Warn("source file missing, skipped",
			zap.String("item", items[src.item].Name),
			zap.String("path", src.path))
		files := items[src.item].Files
		items[src.item].Files = append(files[:src.file], files[src.file+1:]...)
	}

	kept := make([]Item, 0, len(items))
	for _, it := range items {
		if len(it.Files) == 0 {
			logger.Warn("item has no source files, dropped", zap.String("item", it.Name))
			continue
		}
		kept = append(kept, it)
	}

	reg := Empty()
	reg.Version = version
	reg.Items = kept
	return reg, nil
}

// normalizeVersion validates a semver string and strips the "v" prefix.
func normalizeVersion(v string) (string, error) {
	if v == "" {
		return DefaultVersion, nil
	}
	canonical := v
	if !strings.HasPrefix(canonical, "v") {
		canonical = "v" + canonical
	}
	if !semver.IsValid(canonical) {
		return "", errors.New("E131").
			WithDetail(fmt.Sprintf("invalid version %q: expected semver such as 1.2.0", v)).
			WithHint("Pass a version like --version 1.2.0")
	}
	return strings.TrimPrefix(canonical, "v"), nil
}

// BuildFile builds the registry and writes it to out.
func (b *Builder) BuildFile(ctx context.Context, out string) (*Registry, error) {
	reg, err := b.Build(ctx)
	if err != nil {
		return nil, err
	}
	if err := Write(reg, out); err != nil {
		return nil, err
	}
	return reg, nil
}
