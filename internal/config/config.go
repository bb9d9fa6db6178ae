package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// RepoFileName is the repository-local configuration file.
const RepoFileName = ".warndiff.toml"

// Config represents the warndiff configuration.
type Config struct {
	Format        string        `json:"format"`
	Upstream      string        `json:"upstream,omitempty"`
	FilterChanged bool          `json:"filterChanged"`
	Untracked     bool          `json:"untracked"`
	FailOnNew     bool          `json:"failOnNew"`
	OutLog        string        `json:"outLog,omitempty"`
	Include       []string      `json:"include"`
	Exclude       []string      `json:"exclude"`
	RulesFile     string        `json:"rulesFile,omitempty"`
	Tiers         TierConfig    `json:"tiers"`
	Cache         CacheConfig   `json:"cache"`
	Store         StoreConfig   `json:"store"`
	Privacy       PrivacyConfig `json:"privacy"`
	Trace         bool          `json:"trace"`
}

// TierConfig enables the coarser suppression tiers. Exact matching is
// always on.
type TierConfig struct {
	Content bool `json:"content"`
	Message bool `json:"message"`
}

// CacheConfig controls the parsed-log cache.
type CacheConfig struct {
	Enabled    bool   `json:"enabled"`
	Dir        string `json:"dir,omitempty"`
	TTLSeconds int    `json:"ttlSeconds"`
}

// PrivacyConfig controls redaction of source excerpts in reports.
type PrivacyConfig struct {
	RedactSecrets bool     `json:"redactSecrets"`
	RedactPaths   []string `json:"redactPaths"`
}

// StoreConfig locates the named baseline database.
type StoreConfig struct {
	Path string `json:"path,omitempty"`
}

// Default returns a Config with all defaults applied.
func Default() Config {
	return Config{
		Format:        "text",
		FilterChanged: true,
		Include:       []string{"**/*"},
		Exclude:       []string{},
		Tiers: TierConfig{
			Content: true,
			Message: true,
		},
		Cache: CacheConfig{
			Enabled:    true,
			TTLSeconds: 7 * 86400,
		},
		Privacy: PrivacyConfig{
			RedactSecrets: true,
			RedactPaths:   []string{"**/.env", "**/*secret*"},
		},
	}
}

// ConfigDir returns the platform-appropriate config directory for warndiff.
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "warndiff"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "warndiff"), nil
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "warndiff"), nil
		}
		return filepath.Join(home, "AppData", "Roaming", "warndiff"), nil
	default:
		return filepath.Join(home, ".config", "warndiff"), nil
	}
}

// ConfigPath returns the full path to the config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// DataDir returns the directory holding the baseline store.
func DataDir() (string, error) {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "warndiff"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "warndiff"), nil
	case "windows":
		if localAppData := os.Getenv("LOCALAPPDATA"); localAppData != "" {
			return filepath.Join(localAppData, "warndiff"), nil
		}
		return filepath.Join(home, "AppData", "Local", "warndiff"), nil
	default:
		return filepath.Join(home, ".local", "share", "warndiff"), nil
	}
}

// StorePath returns the configured store path or the default one.
func (c Config) StorePath() (string, error) {
	if c.Store.Path != "" {
		return c.Store.Path, nil
	}
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "baselines.db"), nil
}

// LoadFile returns the defaults overlaid with the user config file. A
// missing file yields the defaults and no error.
func LoadFile() (Config, error) {
	cfg := Default()
	path, err := ConfigPath()
	if err != nil {
		return Config{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// Save writes the config to the config file.
func Save(cfg Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Load builds the effective config for the current directory.
func Load(overrides map[string]string) (Config, error) {
	return LoadFrom("", overrides)
}

// LoadFrom builds the effective config by merging:
// defaults <- user file <- repo file (found upward from dir) <- env <- overrides.
func LoadFrom(dir string, overrides map[string]string) (Config, error) {
	cfg, err := LoadFile()
	if err != nil {
		return Config{}, err
	}
	repoPath, ok, err := FindRepoFile(dir)
	if err != nil {
		return Config{}, err
	}
	if ok {
		if err := mergeRepoFile(&cfg, repoPath); err != nil {
			return Config{}, err
		}
	}
	mergeEnv(&cfg)
	mergeOverrides(&cfg, overrides)
	return cfg, nil
}

// FindRepoFile walks up from startDir looking for RepoFileName.
func FindRepoFile(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, RepoFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

type repoFile struct {
	Upstream      string    `toml:"upstream,omitempty"`
	Format        string    `toml:"format"`
	OutLog        string    `toml:"outLog,omitempty"`
	FilterChanged bool      `toml:"filterChanged"`
	Untracked     bool      `toml:"untracked"`
	FailOnNew     bool      `toml:"failOnNew"`
	RulesFile     string    `toml:"rules,omitempty"`
	Include       []string  `toml:"include"`
	Exclude       []string  `toml:"exclude"`
	Tiers         repoTiers `toml:"tiers"`
}

type repoTiers struct {
	Content bool `toml:"content"`
	Message bool `toml:"message"`
}

// WriteRepoFile creates RepoFileName in dir with the repository-level
// settings of cfg. It fails if the file already exists.
func WriteRepoFile(dir string, cfg Config) (string, error) {
	path := filepath.Join(dir, RepoFileName)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", RepoFileName, err)
	}
	rf := repoFile{
		Upstream:      cfg.Upstream,
		Format:        cfg.Format,
		OutLog:        cfg.OutLog,
		FilterChanged: cfg.FilterChanged,
		Untracked:     cfg.Untracked,
		FailOnNew:     cfg.FailOnNew,
		RulesFile:     cfg.RulesFile,
		Include:       cfg.Include,
		Exclude:       cfg.Exclude,
		Tiers:         repoTiers{Content: cfg.Tiers.Content, Message: cfg.Tiers.Message},
	}
	if rf.Exclude == nil {
		rf.Exclude = []string{}
	}
	if err := toml.NewEncoder(f).Encode(rf); err != nil {
		f.Close()
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, f.Close()
}

func mergeRepoFile(cfg *Config, path string) error {
	var rf repoFile
	meta, err := toml.DecodeFile(path, &rf)
	if err != nil {
		return fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if meta.IsDefined("upstream") {
		cfg.Upstream = rf.Upstream
	}
	if meta.IsDefined("format") {
		cfg.Format = rf.Format
	}
	if meta.IsDefined("outLog") {
		cfg.OutLog = resolveRelative(path, rf.OutLog)
	}
	if meta.IsDefined("filterChanged") {
		cfg.FilterChanged = rf.FilterChanged
	}
	if meta.IsDefined("untracked") {
		cfg.Untracked = rf.Untracked
	}
	if meta.IsDefined("failOnNew") {
		cfg.FailOnNew = rf.FailOnNew
	}
	if meta.IsDefined("rules") {
		cfg.RulesFile = resolveRelative(path, rf.RulesFile)
	}
	if meta.IsDefined("include") {
		cfg.Include = rf.Include
	}
	if meta.IsDefined("exclude") {
		cfg.Exclude = rf.Exclude
	}
	if meta.IsDefined("tiers", "content") {
		cfg.Tiers.Content = rf.Tiers.Content
	}
	if meta.IsDefined("tiers", "message") {
		cfg.Tiers.Message = rf.Tiers.Message
	}
	return nil
}

// resolveRelative interprets p relative to the directory holding file.
func resolveRelative(file, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(filepath.Dir(file), p)
}

func mergeEnv(cfg *Config) {
	if v := os.Getenv("WARNDIFF_UPSTREAM"); v != "" {
		cfg.Upstream = v
	}
	if v := os.Getenv("WARNDIFF_FORMAT"); v != "" {
		cfg.Format = v
	}
	if v := os.Getenv("WARNDIFF_OUT_LOG"); v != "" {
		cfg.OutLog = v
	}
	if v := os.Getenv("WARNDIFF_RULES"); v != "" {
		cfg.RulesFile = v
	}
	if v := os.Getenv("WARNDIFF_STORE"); v != "" {
		cfg.Store.Path = v
	}
	if b, ok := envBool("WARNDIFF_FAIL_ON_NEW"); ok {
		cfg.FailOnNew = b
	}
	if b, ok := envBool("WARNDIFF_NO_FILTER"); ok {
		cfg.FilterChanged = !b
	}
	if b, ok := envBool("WARNDIFF_TRACE"); ok {
		cfg.Trace = b
	}
}

func envBool(key string) (bool, bool) {
	v := os.Getenv(key)
	if v == "" {
		return false, false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, false
	}
	return b, true
}

func mergeOverrides(cfg *Config, overrides map[string]string) {
	if overrides == nil {
		return
	}
	if v, ok := overrides["upstream"]; ok && v != "" {
		cfg.Upstream = v
	}
	if v, ok := overrides["format"]; ok && v != "" {
		cfg.Format = v
	}
	if v, ok := overrides["outLog"]; ok && v != "" {
		cfg.OutLog = v
	}
	if v, ok := overrides["rulesFile"]; ok && v != "" {
		cfg.RulesFile = v
	}
	if v, ok := overrides["store"]; ok && v != "" {
		cfg.Store.Path = v
	}
	if overrideBool(overrides, "failOnNew") {
		cfg.FailOnNew = true
	}
	if overrideBool(overrides, "noFilter") {
		cfg.FilterChanged = false
	}
	if overrideBool(overrides, "untracked") {
		cfg.Untracked = true
	}
	if overrideBool(overrides, "strict") {
		cfg.Tiers.Message = false
	}
	if overrideBool(overrides, "noContent") {
		cfg.Tiers.Content = false
	}
	if overrideBool(overrides, "noCache") {
		cfg.Cache.Enabled = false
	}
	if overrideBool(overrides, "trace") {
		cfg.Trace = true
	}
	if overrideBool(overrides, "noRedact") {
		cfg.Privacy.RedactSecrets = false
	}
}

func overrideBool(overrides map[string]string, key string) bool {
	b, err := strconv.ParseBool(overrides[key])
	return err == nil && b
}

// SetField sets a single config field by key name. Returns error if key is unknown.
func SetField(cfg *Config, key, value string) error {
	switch key {
	case "format":
		cfg.Format = value
	case "upstream":
		cfg.Upstream = value
	case "outLog":
		cfg.OutLog = value
	case "rulesFile":
		cfg.RulesFile = value
	case "include":
		cfg.Include = splitList(value)
	case "exclude":
		cfg.Exclude = splitList(value)
	case "privacy.redactPaths":
		cfg.Privacy.RedactPaths = splitList(value)
	case "store.path":
		cfg.Store.Path = value
	case "cache.dir":
		cfg.Cache.Dir = value
	case "cache.ttlSeconds":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("cache.ttlSeconds must be an integer: %w", err)
		}
		cfg.Cache.TTLSeconds = n
	case "filterChanged", "untracked", "failOnNew", "trace",
		"tiers.content", "tiers.message", "cache.enabled", "privacy.redactSecrets":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s must be a boolean: %w", key, err)
		}
		*boolField(cfg, key) = b
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}

func boolField(cfg *Config, key string) *bool {
	switch key {
	case "filterChanged":
		return &cfg.FilterChanged
	case "untracked":
		return &cfg.Untracked
	case "failOnNew":
		return &cfg.FailOnNew
	case "trace":
		return &cfg.Trace
	case "tiers.content":
		return &cfg.Tiers.Content
	case "tiers.message":
		return &cfg.Tiers.Message
	case "privacy.redactSecrets":
		return &cfg.Privacy.RedactSecrets
	default:
		return &cfg.Cache.Enabled
	}
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
