// Package errors provides coded, hint-carrying errors for the zoo CLI and
// registry tooling.
//
// Every user-facing failure has a code that maps to a short message and a
// recovery hint:
//
//	err := errors.New("E110").
//	    WithDetail("tried env, ancestor, local, git, tarball")
//
//	errors.PrintError(err)
//	// ERROR E110: Zoo repository not found
//	//
//	//   tried env, ancestor, local, git, tarball
//	//
//	//   Hint: Set ZOO_REPO_PATH to a local checkout or pass --repo
//
// # Error Codes
//
//   - E100-E109: project configuration (components.json)
//   - E110-E119: repository discovery
//   - E120-E129: components and file copies
//   - E130-E139: catalog and registry
//   - E140-E149: publishing
package errors
