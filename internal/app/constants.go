package app

// DefaultMaxAttempts applies when a variant does not configure its own limit.
// Keep this centralized so tests or local runs can adjust the rule without
// touching multiple call sites.
const DefaultMaxAttempts = 3
