package main

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/flowtomic/zoo/internal/logging"
	"github.com/flowtomic/zoo/internal/publish"
	"github.com/flowtomic/zoo/internal/registry"
	"github.com/flowtomic/zoo/internal/server"
)

func registryCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "registry",
		Short: "Build, serve and publish registry.json",
		Long: `Work with the shadcn-compatible component registry.

Commands:
  build      Generate registry.json from a Zoo checkout
  serve      Serve registry.json over HTTP
  publish    Upload the registry views to S3`,
	}

	cmd.AddCommand(
		registryBuildCmd(c),
		registryServeCmd(c),
		registryPublishCmd(c),
	)

	return cmd
}

func registryBuildCmd(c *cli) *cobra.Command {
	var (
		out     string
		strict  bool
		version string
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Generate registry.json",
		Long: `Read every component and hook in the catalog from a Zoo checkout and
write registry.json plus one r/<name>.json per item.

Missing source files are skipped with a warning unless --strict is set.

Examples:
  zoo registry build
  zoo registry build --out dist/registry.json --version 1.4.0 --strict`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			loc, err := c.locate(cmd, true)
			if err != nil {
				return err
			}
			cat, err := catalogFor(loc)
			if err != nil {
				return err
			}

			if !filepath.IsAbs(out) {
				out = filepath.Join(c.cwd, out)
			}
			b := &registry.Builder{
				Repo:    loc.Path,
				Catalog: cat,
				Version: version,
				Strict:  strict,
				Logger:  c.logger,
			}
			reg, err := b.BuildFile(cmd.Context(), out)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			success(w, "Wrote %d items to %s", len(reg.Items), c.relPath(out))
			for _, v := range registry.Views[1:] {
				info(w, "%-10s %d items", v, len(reg.View(v).Items))
			}
			info(w, "Version %s, catalog %s", reg.Version, cat.Source())
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", filepath.Join("public", registry.FileName), "Output file")
	cmd.Flags().BoolVar(&strict, "strict", false, "Fail on missing source files")
	cmd.Flags().StringVar(&version, "version", registry.DefaultVersion, "Registry version (semver)")

	return cmd
}

func registryServeCmd(c *cli) *cobra.Command {
	var (
		addr  string
		file  string
		watch bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve registry.json over HTTP",
		Long: `Serve the registry views with CORS and CDN cache headers.

Flags override the ZOO_REGISTRY_* environment variables. With --watch the
file is reloaded on change and websocket clients on /ws are notified.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := server.LoadConfig(filepath.Join(c.cwd, ".env"))
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Addr = addr
			}
			if cmd.Flags().Changed("file") {
				cfg.File = file
			}
			if cmd.Flags().Changed("watch") {
				cfg.Watch = watch
			}
			if !filepath.IsAbs(cfg.File) {
				cfg.File = filepath.Join(c.cwd, cfg.File)
			}

			level := cfg.LogLevel
			if c.verbose {
				level = "debug"
			}
			return server.New(cfg, logging.NewServer(level)).Run(cmd.Context())
		},
	}

	defaults := server.DefaultConfig()
	cmd.Flags().StringVar(&addr, "addr", defaults.Addr, "Listen address")
	cmd.Flags().StringVar(&file, "file", defaults.File, "registry.json to serve")
	cmd.Flags().BoolVar(&watch, "watch", false, "Reload when the file changes")

	return cmd
}

func registryPublishCmd(c *cli) *cobra.Command {
	var (
		bucket   string
		prefix   string
		file     string
		endpoint string
	)

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Upload the registry to S3",
		Long: `Upload all.json, components.json, blocks.json, registry.json and
r/<name>.json to an S3 bucket.

Credentials come from the standard AWS environment and config files.

Examples:
  zoo registry publish --bucket my-cdn --prefix registry
  zoo registry publish --endpoint http://localhost:9000 --bucket zoo`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := publish.ConfigFromEnv()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("bucket") {
				cfg.Bucket = bucket
			}
			if cmd.Flags().Changed("prefix") {
				cfg.Prefix = prefix
			}
			if cmd.Flags().Changed("endpoint") {
				cfg.Endpoint = endpoint
			}
			if !filepath.IsAbs(file) {
				file = filepath.Join(c.cwd, file)
			}

			reg, err := registry.Load(file)
			if err != nil {
				return err
			}
			p, err := publish.NewS3(cmd.Context(), cfg, c.logger)
			if err != nil {
				return err
			}
			keys, err := p.Publish(cmd.Context(), reg)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			for _, k := range keys {
				success(w, "s3://%s/%s", cfg.Bucket, k)
			}
			info(w, "Published %d objects", len(keys))
			return nil
		},
	}

	cmd.Flags().StringVar(&bucket, "bucket", "", "Destination bucket (ZOO_PUBLISH_BUCKET)")
	cmd.Flags().StringVar(&prefix, "prefix", "", "Key prefix (ZOO_PUBLISH_PREFIX)")
	cmd.Flags().StringVar(&file, "file", filepath.Join("public", registry.FileName), "registry.json to publish")
	cmd.Flags().StringVar(&endpoint, "endpoint", "", "S3-compatible endpoint URL (ZOO_PUBLISH_ENDPOINT)")

	return cmd
}
