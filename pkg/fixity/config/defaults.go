// Package config loads fixity settings from YAML, FIXITY_ environment
// variables and bound command-line flags.
package config

// Default configuration values.
const (
	// DefaultAlgorithm keys the manifests built by generate and by directory
	// inputs to diff.
	DefaultAlgorithm = "cksum"

	// DefaultBufferSize is the digest engine read size.
	DefaultBufferSize = "32KiB"

	// DefaultWorkers of zero sizes the hashing pool from the host.
	DefaultWorkers = 0

	DefaultLayout          = "checksum-first"
	DefaultXMLDigestPrefix = "cksum"
	DefaultReportFormat    = "plain"
)

// DefaultAlgorithms is the set computed by the digest command.
var DefaultAlgorithms = []string{"CRC32", "cksum", "MD5", "SHA-1", "SHA-256"}

// DefaultExclusions are never worth hashing.
var DefaultExclusions = []string{
	"/proc",
	"/sys",
	"/dev",
}

// DefaultComponentLevels sets per-component log levels.
var DefaultComponentLevels = map[string]string{
	"digest":    "info",
	"walker":    "info",
	"loader":    "info",
	"reconcile": "info",
	"report":    "warn",
	"cache":     "warn",
}
