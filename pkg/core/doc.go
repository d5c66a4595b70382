// Package core provides a small, stable facade over Gdprmask's internal engine
// for external integrations. It re-exports a narrow API surface so other
// programs can depend on a stable import path without reaching into internal
// packages.
//
// Example:
//
//	res, err := core.Anonymize(ctx, "Pokličite Ano na 031 123 456", core.Request{Language: "sl"})
//	if err != nil { /* handle */ }
//	_ = core.MarshalResult(os.Stdout, res)
package core
