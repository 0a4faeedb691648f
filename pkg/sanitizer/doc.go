// Package sanitizer provides input normalization functions for booking data.
//
// All normalization functions are idempotent - applying them multiple times
// produces the same result. Functions handle invalid input gracefully,
// typically by returning empty strings rather than errors.
//
// Normalization includes:
//   - Titles and names: Collapse whitespace, trim leading/trailing spaces
//   - Free text: Trim per-line, collapse horizontal whitespace, preserve line breaks
//   - Regex fragments: Escape metacharacters before use in search filters
package sanitizer
