// Package config handles the two configuration surfaces of the zoo CLI.
//
// components.json lives at the root of a consumer project. It is written
// once by 'zoo init' and read by 'zoo add' and 'zoo diff':
//
//	{
//	  "$schema": "https://zoo.flowtomic.dev/schema/components.json",
//	  "style": "default",
//	  "tsx": true,
//	  "srcDir": "src",
//	  "aliases": {
//	    "components": "@/components",
//	    "utils": "@/lib/utils",
//	    "ui": "@/components/ui",
//	    "hooks": "@/hooks"
//	  },
//	  "packages": { "ui": "@zoo/ui", "logic": "@zoo/logic" }
//	}
//
// Settings are the CLI's own knobs (repository location, clone URL, cache
// directory). They come from flags, ZOO_* environment variables and
// ~/.config/zoo/config.yaml through viper.
package config
