package shared

// VersionInfo represents the structure of a published version.json manifest
type VersionInfo struct {
	Version string `json:"version"`
}
