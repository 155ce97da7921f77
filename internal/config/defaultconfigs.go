package config

// -----------------------------------------------------------------------------
// Embedded per-device overrides.
//
// Populate embeddedConfigs at build time (e.g. via code generation) or
// manually during development. Key: device ID (the "01" in
// "medbox/01/..."). Val: raw JSON bytes overriding any subset of the
// default tunables.
// -----------------------------------------------------------------------------

var embeddedConfigs = map[string][]byte{}
