package static

import _ "embed"

// UsageMd contains the embedded API usage notes served at /usage.md.
//
//go:embed usage.md
var UsageMd string
