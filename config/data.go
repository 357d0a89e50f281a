// Package config holds the build profile: the engine and player versions a bundle claims,
// the target platform, the data block compression and per-class type hash overrides.
package config

type Profile struct {
	EngineVersion  string `yaml:"engine_version" json:"engine_version"`
	PlayerVersion  string `yaml:"player_version" json:"player_version"`
	TargetPlatform int32  `yaml:"target_platform" json:"target_platform"`
	// Compression names the codec for the data block: none, lzma, lz4 or lz4hc.
	Compression string `yaml:"compression" json:"compression"`
	// TypeHashes maps a class name or id to a 32 digit hex old type hash.
	TypeHashes map[string]string `yaml:"type_hashes" json:"type_hashes"`
}
