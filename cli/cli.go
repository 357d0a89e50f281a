package cli

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/alexflint/go-arg"
	"github.com/pkg/errors"
	zlog "github.com/rs/zerolog/log"
	"prefab-bundler/config"
	"prefab-bundler/ubundle"
	"prefab-bundler/ubundle/ugraph"
	"prefab-bundler/ubundle/uobject"
	"prefab-bundler/ui"
)

type (
	Args struct {
		Build       *BuildCmd       `arg:"subcommand:build"`
		Inspect     *InspectCmd     `arg:"subcommand:inspect"`
		Interactive *InteractiveCmd `arg:"subcommand:interactive"`
		Verbose     bool            `arg:"-v" help:"log debug messages"`
	}
	BuildCmd struct {
		Name    string   `arg:"required" help:"prefab name" placeholder:"NAME"`
		To      string   `arg:"required" help:"path to destination bundle" placeholder:"out.bundle"`
		Profile string   `help:"path to a YAML build profile" placeholder:"profile.yaml"`
		Script  []string `help:"attach a MonoBehaviour running this script" placeholder:"NS.CLASS@ASSEMBLY"`
		Force   bool     `help:"overwrite the destination file"`
	}
	InspectCmd struct {
		From  string `arg:"required" help:"path to source bundle" placeholder:"in.bundle"`
		To    string `help:"path to destination JSON file, stdout when empty" placeholder:"out.json"`
		Force bool   `help:"overwrite the destination file"`
	}
	InteractiveCmd struct {
		From string `arg:"positional,required" help:"path to source bundle" placeholder:"BUNDLE"`
	}
)

var (
	ErrSourceMissing      = errors.New("source file does not exist")
	ErrDestinationExisted = errors.New("destination file existed, pass --force to allow overwriting")
)

func (Args) Description() string {
	des := strings.Join(
		[]string{
			"A CLI utility to build UnityFS asset bundles that carry a single prefab,",
			"and to inspect such bundles as JSON or in an interactive object browser.",
		},
		"\n",
	)
	des += "\n"
	return des
}

func CheckExistence(path string) bool {
	_, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return false
	}
	return err == nil
}

// ParseScript reads "Namespace.Class@Assembly". The namespace may be empty or dotted.
func ParseScript(s string) (*uobject.MonoScript, error) {
	fullName, assembly, found := strings.Cut(s, "@")
	if !found || fullName == "" || assembly == "" {
		return nil, errors.Errorf("ParseScript error: expected NS.CLASS@ASSEMBLY, got %q", s)
	}
	namespace := ""
	className := fullName
	if i := strings.LastIndex(fullName, "."); i >= 0 {
		namespace, className = fullName[:i], fullName[i+1:]
	}
	if className == "" {
		return nil, errors.Errorf("ParseScript error: no class name in %q", s)
	}
	return uobject.NewMonoScript(namespace, className, assembly), nil
}

func loadProfile(path string) (config.Profile, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

func StartBuilding(cmd BuildCmd) error {
	if CheckExistence(cmd.To) && !cmd.Force {
		return errors.Wrapf(ErrDestinationExisted, "StartBuilding error for %q", cmd.To)
	}
	profile, err := loadProfile(cmd.Profile)
	if err != nil {
		return errors.Wrap(err, "StartBuilding error")
	}

	prefab := ugraph.NewPrefab(cmd.Name)
	for _, s := range cmd.Script {
		script, err := ParseScript(s)
		if err != nil {
			return errors.Wrap(err, "StartBuilding error")
		}
		if err := prefab.AddComponent(uobject.NewMonoBehaviour(script)); err != nil {
			return errors.Wrap(err, "StartBuilding error")
		}
		zlog.Debug().Str("script", script.FullName()).Str("assembly", script.AssemblyName).Msg("attached script")
	}

	bs, err := ubundle.Build(prefab, profile)
	if err != nil {
		return errors.Wrap(err, "StartBuilding error")
	}
	if err := os.WriteFile(cmd.To, bs, 0644); err != nil {
		return errors.Wrapf(err, "StartBuilding error writing to %q", cmd.To)
	}
	zlog.Info().
		Str("prefab", prefab.ContainerPath()).
		Int("objects", prefab.Arena().Len()).
		Int("bytes", len(bs)).
		Str("to", cmd.To).
		Msg("built bundle")
	return nil
}

func readBundle(path string) (*ubundle.Bundle, error) {
	if !CheckExistence(path) {
		return nil, errors.Wrapf(ErrSourceMissing, "readBundle error for %q", path)
	}
	bs, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "readBundle error reading %q", path)
	}
	if !ubundle.IsUnityFS(bs) {
		return nil, errors.Wrapf(ubundle.ErrInvalidSignature, "readBundle error for %q", path)
	}
	bundle, err := ubundle.Decode(bs)
	if err != nil {
		return nil, errors.Wrapf(err, "readBundle error decoding %q", path)
	}
	zlog.Debug().Str("from", path).Int("nodes", len(bundle.Nodes)).Msg("decoded bundle")
	return bundle, nil
}

func StartInspecting(cmd InspectCmd) error {
	if cmd.To != "" && CheckExistence(cmd.To) && !cmd.Force {
		return errors.Wrapf(ErrDestinationExisted, "StartInspecting error for %q", cmd.To)
	}
	bundle, err := readBundle(cmd.From)
	if err != nil {
		return errors.Wrap(err, "StartInspecting error")
	}
	lhm, err := ubundle.ToOrderedMap(bundle)
	if err != nil {
		return errors.Wrap(err, "StartInspecting error")
	}
	bs, err := json.MarshalIndent(lhm, "", "  ")
	if err != nil {
		return errors.Wrap(err, "StartInspecting error encoding JSON")
	}

	if cmd.To == "" {
		_, err := os.Stdout.Write(append(bs, '\n'))
		return errors.Wrap(err, "StartInspecting error writing to stdout")
	}
	if err := os.WriteFile(cmd.To, bs, 0644); err != nil {
		return errors.Wrapf(err, "StartInspecting error writing to %q", cmd.To)
	}
	zlog.Info().Str("to", cmd.To).Msg("done inspecting")
	return nil
}

func StartInteractive(cmd InteractiveCmd) error {
	bundle, err := readBundle(cmd.From)
	if err != nil {
		return errors.Wrap(err, "StartInteractive error")
	}
	return ui.Start(cmd.From, bundle)
}

func Start() {
	args := Args{}
	parser := arg.MustParse(&args)
	SetupLogger(args.Verbose)

	var err error
	switch {
	case args.Build != nil:
		err = StartBuilding(*args.Build)
	case args.Inspect != nil:
		err = StartInspecting(*args.Inspect)
	case args.Interactive != nil:
		err = StartInteractive(*args.Interactive)
	default:
		parser.WriteHelp(os.Stdout)
		return
	}
	if err != nil {
		zlog.Error().Err(err).Msg("failed")
		os.Exit(1)
	}
}
