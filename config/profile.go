package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
	"prefab-bundler/ubundle/uclass"
	"prefab-bundler/ubundle/ucompress"
	"prefab-bundler/ubundle/ufile"
	"prefab-bundler/ubundle/uheader"
)

func Default() Profile {
	return Profile{
		EngineVersion:  uheader.DefaultEngineVersion,
		PlayerVersion:  uheader.DefaultPlayerVersion,
		TargetPlatform: ufile.DefaultTargetPlatform,
		Compression:    ucompress.TypeLZMA.String(),
		TypeHashes:     map[string]string{},
	}
}

// Parse reads a YAML profile. Keys the document leaves out keep their default values.
func Parse(bs []byte) (Profile, error) {
	profile := Default()
	if err := yaml.Unmarshal(bs, &profile); err != nil {
		return Profile{}, errors.Wrap(err, "Parse error")
	}
	if profile.TypeHashes == nil {
		profile.TypeHashes = map[string]string{}
	}
	if err := profile.Validate(); err != nil {
		return Profile{}, errors.Wrap(err, "Parse error")
	}
	return profile, nil
}

func Load(path string) (Profile, error) {
	bs, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, errors.Wrapf(err, "Load error reading %q", path)
	}
	profile, err := Parse(bs)
	if err != nil {
		return Profile{}, errors.Wrapf(err, "Load error for %q", path)
	}
	return profile, nil
}

// Validate checks the fields that would otherwise fail halfway through a build.
func (p Profile) Validate() error {
	if p.EngineVersion == "" {
		return errors.New("Validate error: engine_version is empty")
	}
	if p.PlayerVersion == "" {
		return errors.New("Validate error: player_version is empty")
	}
	if _, err := p.CompressionType(); err != nil {
		return errors.Wrap(err, "Validate error")
	}
	if _, err := p.ResolvedTypeHashes(); err != nil {
		return errors.Wrap(err, "Validate error")
	}
	return nil
}

func (p Profile) CompressionType() (ucompress.Type, error) {
	return ucompress.ParseType(p.Compression)
}

func (p Profile) ResolvedTypeHashes() (map[uclass.ID]uclass.Hash128, error) {
	hashes := make(map[uclass.ID]uclass.Hash128, len(p.TypeHashes))
	for class, hex := range p.TypeHashes {
		id, err := uclass.ParseID(class)
		if err != nil {
			return nil, errors.Wrap(err, "ResolvedTypeHashes error")
		}
		hash, err := uclass.ParseHash128(hex)
		if err != nil {
			return nil, errors.Wrapf(err, "ResolvedTypeHashes error for %s", class)
		}
		hashes[id] = hash
	}
	return hashes, nil
}

// FileOptions is the serialized file part of the profile.
func (p Profile) FileOptions() (ufile.Options, error) {
	hashes, err := p.ResolvedTypeHashes()
	if err != nil {
		return ufile.Options{}, errors.Wrap(err, "FileOptions error")
	}
	return ufile.Options{
		UnityVersion:   p.EngineVersion,
		TargetPlatform: p.TargetPlatform,
		TypeHashes:     hashes,
	}, nil
}
