// Package webaudit audits student web projects: it consumes the pages
// and stylesheets of a small site and reduces them to heuristic
// quality scores covering imports organization, CSS variable hygiene,
// typography, color palette, BEM class discipline and image
// accessibility/performance.
//
// The scoring engine lives in internal/analyzer; this package
// orchestrates the analyzers over a project's inputs, persists one
// JSON report per project, and aggregates stored reports into
// class-wide statistics.
//
//	input, err := site.FetchProject(ctx, "https://example.org", nil)
//	report := webaudit.New(nil).Run(input)
//	store.Save(report)
package webaudit
