// Package templates provides the files `zoo init` scaffolds into a project.
//
// # Available Templates
//
//   - utils: the cn() class name helper at the utils alias
//
// # Usage
//
//	tmpl, _ := templates.Get("utils")
//	res, err := tmpl.Create(projectDir, templates.Config{UtilsFile: "src/lib/utils", TSX: true})
//
// # Template Variables
//
//	{{.UtilsFile}}  - utils module path without extension
//	{{.TSX}}        - whether the project uses TypeScript
//	{{.Ext}}        - "ts" or "js"
package templates
