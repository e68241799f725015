package parser

// Record pairs a numeric NPC ID with the locale variable that names it.
type Record struct {
	// ID is the NPC entity ID registered with the boss module.
	ID int64 `toml:"id" yaml:"id"`
	// Key is the locale variable identifier (L.<Key>).
	Key string `toml:"key" yaml:"key"`
	// Text is the English name taken from the locale assignment.
	Text string `toml:"text" yaml:"text"`
}

// Result holds extraction output for a single source file.
type Result struct {
	// Module is the boss module name, empty if no declaration was found.
	Module string
	// Records are the paired entries in declaration order.
	Records []Record
	// Warnings lists unmatched IDs and keys. Extraction is best-effort:
	// mismatches never fail it.
	Warnings []string
}
