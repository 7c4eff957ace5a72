package config

import (
	_ "embed"
	stderrors "errors"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/arthur-debert/homestead/pkg/errors"
	"github.com/arthur-debert/homestead/pkg/logging"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

//go:embed embedded/defaults.toml
var defaultConfig []byte

// EnvPrefix starts every environment override
const EnvPrefix = "HOMESTEAD_"

// flagKeys maps command line flags to configuration keys
var flagKeys = map[string]string{
	"host":        "target.host",
	"port":        "target.port",
	"user":        "target.user",
	"identity":    "target.identity",
	"known-hosts": "target.known_hosts",
	"insecure":    "target.insecure_ignore_host_key",
	"sudo-prefix": "sudo.prefix",
	"manifest":    "manifest.path",
	"git-backend": "git.backend",
	"name":        "identity.name",
	"email":       "identity.email",
	"mkdirs":      "terraform.mkdirs",
}

// Options selects the optional layers
type Options struct {
	// File is an explicit config file. It must exist.
	File string
	// Flags is the parsed flag set; only changed flags are applied.
	Flags *pflag.FlagSet
}

// rawBytesProvider implements koanf provider for raw bytes
type rawBytesProvider struct{ bytes []byte }

func (r *rawBytesProvider) ReadBytes() ([]byte, error) { return r.bytes, nil }
func (r *rawBytesProvider) Read() (map[string]interface{}, error) {
	return nil, stderrors.New("not implemented")
}

// Load merges every layer and validates the result
func Load(opts Options) (*Config, error) {
	logger := logging.GetLogger("config")
	k := koanf.New(".")

	// 1. Built-in defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "load defaults")
	}

	// 2. User file
	path := opts.File
	if path == "" {
		path = findUserFile()
	}
	if path != "" {
		parser, err := parserFor(path)
		if err != nil {
			return nil, err
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigLoad, "load config file %s", path)
		}
		logger.Debug().Str("path", path).Msg("Loaded config file")
	}

	// 3. Environment
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "load environment")
	}

	// 4. Flags
	if opts.Flags != nil {
		p := posflag.ProviderWithFlag(opts.Flags, ".", k, flagKey(opts.Flags))
		if err := k.Load(p, nil); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "load flags")
		}
	}

	cfg, err := unmarshal(k)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Defaults returns the built-in configuration
func Defaults() (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "load defaults")
	}
	return unmarshal(k)
}

// FromMap builds a configuration from defaults overlaid with values, keyed by
// dotted path.
func FromMap(values map[string]interface{}) (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "load defaults")
	}
	if err := k.Load(confmap.Provider(values, "."), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "load values")
	}
	cfg, err := unmarshal(k)
	if err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

func unmarshal(k *koanf.Koanf) (*Config, error) {
	var cfg Config
	conf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, conf); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "decode configuration")
	}
	return &cfg, nil
}

func parserFor(path string) (koanf.Parser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return toml.Parser(), nil
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	}
	return nil, errors.Newf(errors.ErrConfigLoad, "unsupported config format %q", filepath.Ext(path)).
		WithDetail("path", path)
}

func findUserFile() string {
	for _, name := range []string{"config.toml", "config.yaml", "config.yml"} {
		if p, err := xdg.SearchConfigFile(filepath.Join("homestead", name)); err == nil {
			return p
		}
	}
	return ""
}

// envKey turns HOMESTEAD_TARGET__KNOWN_HOSTS into target.known_hosts
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

func flagKey(fs *pflag.FlagSet) func(f *pflag.Flag) (string, interface{}) {
	return func(f *pflag.Flag) (string, interface{}) {
		if !f.Changed {
			return "", nil
		}
		switch f.Name {
		case "yes", "no":
			if on, _ := fs.GetBool(f.Name); on {
				return "prompt.mode", f.Name
			}
			return "", nil
		}
		key, ok := flagKeys[f.Name]
		if !ok {
			return "", nil
		}
		return key, posflag.FlagVal(fs, f)
	}
}
