// Package engine runs the anonymization pipeline for Gdprmask. It fans a text
// out to the detectors, merges their spans, masks the survivors and scores
// the result. It also walks file trees for batch runs. This package is
// internal; external consumers should use the stable facade in pkg/core.
package engine
