// Package locator finds a checkout of the Zoo monorepo.
//
// A checkout is any directory containing packages/ui/src/components. The
// Locator tries, in order: the ZOO_REPO_PATH override, the ancestors of the
// working directory, a list of well-known local paths, a shallow git clone
// into the cache and finally a source tarball download. The first strategy
// to yield a directory with the marker wins.
package locator
