// Package transplant copies component sources from a Zoo checkout into a
// consumer project.
//
// Sources import each other through the @zoo/ui package or relative paths.
// The Rewriter maps those imports to the project's aliases from
// components.json so the copied files compile in place.
package transplant
