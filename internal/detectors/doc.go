// Package detectors implements the detection strategies used by gdprmask.
// Each detector scans a whole text for one language and reports zero or more
// character-offset spans. Overlaps between detectors are resolved later by
// the merge package.
package detectors
