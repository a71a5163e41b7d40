// Package catalog holds the Zoo UI component map: which components exist,
// their Atomic Design tier, the files that make them up and the npm and
// registry dependencies they declare.
//
// The map is a YAML data file. The default copy is embedded into the
// binary; a checkout can carry its own at registry/components.yaml, which the
// registry builder prefers.
//
//	components:
//	  - name: button
//	    type: atom
//	    path: atoms/button
//	    files: [button.tsx, index.ts]
//	    dependencies: ["@radix-ui/react-slot"]
//	hooks:
//	  - name: use-debounce
//	    file: use-debounce.ts
//	aliases:
//	  dropdown: dropdown-menu
package catalog
