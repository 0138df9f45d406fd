// Package settings extracts default values from settings declaration files
// and dotenv files, and merges them into a read-only Snapshot. The .env file
// is always merged last, so its values win over declared defaults.
package settings
