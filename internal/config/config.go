// Package config provides configuration loading and validation for the service.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Default model endpoint settings for the Ark chat-completions backend.
const (
	DefaultArkAPIURL = "https://ark.cn-beijing.volces.com/api/v3/chat/completions"
	DefaultArkModel  = "doubao-seed-1-6-250615"
)

// Config holds all settings the service needs. All fields can come from the
// environment; a JSON file can override defaults for local development.
type Config struct {
	// Model backend
	Provider     string `json:"provider,omitempty"`       // "ark" (default) or "gemini"
	ArkAPIKey    string `json:"ark_api_key,omitempty"`    // Ark bearer token
	ArkAPIURL    string `json:"ark_api_url,omitempty"`    // chat-completions endpoint
	ArkModel     string `json:"ark_model,omitempty"`      // model name sent in the payload
	GeminiAPIKey string `json:"gemini_api_key,omitempty"` // used only when Provider == "gemini"
	GeminiModel  string `json:"gemini_model,omitempty"`

	// Feishu spreadsheet backend
	FeishuAppID       string `json:"feishu_app_id,omitempty"`
	FeishuAppSecret   string `json:"feishu_app_secret,omitempty"`
	TemplateSheetURL  string `json:"template_sheet_url,omitempty"`
	FeishuFolderToken string `json:"feishu_folder_token,omitempty"`

	// Default input locations
	PPTPath        string `json:"ppt_path,omitempty"`
	OutlinePath    string `json:"outline_path,omitempty"`
	InfluencerDir  string `json:"influencer_dir,omitempty"` // local fallback for profile content
	DefaultURL     string `json:"default_url,omitempty"`
	DefaultBrand   string `json:"default_brand,omitempty"`
	AdditionalInfo string `json:"additional_info,omitempty"`

	// StyleTypes is the single source of truth for accepted style_type values.
	// Historical revisions of the product disagreed on the exact pair, so the
	// set is configuration rather than a hardcoded enumeration.
	StyleTypes []string `json:"style_types,omitempty"`

	// Server
	Port       int  `json:"port,omitempty"`
	UseBrowser bool `json:"use_browser,omitempty"` // headless-browser fallback for SPA profile pages
	Verbose    bool `json:"verbose,omitempty"`
}

// DefaultStyleTypes returns the two canonical style-type values.
func DefaultStyleTypes() []string {
	return []string{"测评类", "种草类"}
}

// Load builds a Config from environment variables with documented defaults.
func Load() *Config {
	cfg := &Config{
		Provider:          envOr("MODEL_PROVIDER", "ark"),
		ArkAPIKey:         os.Getenv("ARK_API_KEY"),
		ArkAPIURL:         envOr("ARK_API_URL", DefaultArkAPIURL),
		ArkModel:          envOr("ARK_MODEL_NAME", DefaultArkModel),
		GeminiAPIKey:      os.Getenv("GEMINI_API_KEY"),
		GeminiModel:       envOr("GEMINI_MODEL_NAME", "gemini-2.5-flash"),
		FeishuAppID:       os.Getenv("FEISHU_APP_ID"),
		FeishuAppSecret:   os.Getenv("FEISHU_APP_SECRET"),
		TemplateSheetURL:  os.Getenv("FEISHU_TEMPLATE_SHEET_URL"),
		FeishuFolderToken: os.Getenv("FEISHU_FOLDER_TOKEN"),
		PPTPath:           os.Getenv("PPT_PATH"),
		OutlinePath:       os.Getenv("VIDEO_OUTLINE_PATH"),
		InfluencerDir:     os.Getenv("INFLUENCER_DIR"),
		DefaultURL:        os.Getenv("DEFAULT_URL"),
		DefaultBrand:      os.Getenv("BRAND_NAME"),
		AdditionalInfo:    os.Getenv("ADDITIONAL_INFO"),
		StyleTypes:        DefaultStyleTypes(),
	}

	if raw := os.Getenv("STYLE_TYPES"); raw != "" {
		var parsed []string
		for _, v := range strings.Split(raw, ",") {
			if v = strings.TrimSpace(v); v != "" {
				parsed = append(parsed, v)
			}
		}
		if len(parsed) > 0 {
			cfg.StyleTypes = parsed
		}
	}

	cfg.Port = 8000
	if raw := os.Getenv("API_PORT"); raw != "" {
		if p, err := strconv.Atoi(raw); err == nil {
			cfg.Port = p
		}
	}
	cfg.UseBrowser = boolEnv("USE_BROWSER")
	cfg.Verbose = boolEnv("VERBOSE")

	return cfg
}

// LoadFile reads a JSON config file and merges its non-empty values over cfg.
// Returns an error if the file cannot be read or parsed.
func LoadFile(path string, cfg *Config) error {
	if path == "" {
		return fmt.Errorf("config path is empty")
	}
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var file Config
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse config JSON: %w", err)
	}
	merge(cfg, &file)
	return nil
}

// Validate checks that the configuration can support a pipeline run.
func (c *Config) Validate() error {
	switch c.Provider {
	case "ark":
		if c.ArkAPIKey == "" {
			return fmt.Errorf("config error: ARK_API_KEY is required for the ark provider")
		}
	case "gemini":
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("config error: GEMINI_API_KEY is required for the gemini provider")
		}
	default:
		return fmt.Errorf("config error: unknown model provider %q", c.Provider)
	}

	if len(c.StyleTypes) < 2 {
		return fmt.Errorf("config error: at least two style types must be configured, got %d", len(c.StyleTypes))
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config error: invalid port %d", c.Port)
	}
	return nil
}

// AcceptsStyleType reports whether hint is one of the configured style types.
func (c *Config) AcceptsStyleType(hint string) bool {
	for _, st := range c.StyleTypes {
		if st == hint {
			return true
		}
	}
	return false
}

func merge(dst, src *Config) {
	if src.Provider != "" {
		dst.Provider = src.Provider
	}
	if src.ArkAPIKey != "" {
		dst.ArkAPIKey = src.ArkAPIKey
	}
	if src.ArkAPIURL != "" {
		dst.ArkAPIURL = src.ArkAPIURL
	}
	if src.ArkModel != "" {
		dst.ArkModel = src.ArkModel
	}
	if src.GeminiAPIKey != "" {
		dst.GeminiAPIKey = src.GeminiAPIKey
	}
	if src.GeminiModel != "" {
		dst.GeminiModel = src.GeminiModel
	}
	if src.FeishuAppID != "" {
		dst.FeishuAppID = src.FeishuAppID
	}
	if src.FeishuAppSecret != "" {
		dst.FeishuAppSecret = src.FeishuAppSecret
	}
	if src.TemplateSheetURL != "" {
		dst.TemplateSheetURL = src.TemplateSheetURL
	}
	if src.FeishuFolderToken != "" {
		dst.FeishuFolderToken = src.FeishuFolderToken
	}
	if src.PPTPath != "" {
		dst.PPTPath = src.PPTPath
	}
	if src.OutlinePath != "" {
		dst.OutlinePath = src.OutlinePath
	}
	if src.InfluencerDir != "" {
		dst.InfluencerDir = src.InfluencerDir
	}
	if src.DefaultURL != "" {
		dst.DefaultURL = src.DefaultURL
	}
	if src.DefaultBrand != "" {
		dst.DefaultBrand = src.DefaultBrand
	}
	if src.AdditionalInfo != "" {
		dst.AdditionalInfo = src.AdditionalInfo
	}
	if len(src.StyleTypes) > 0 {
		dst.StyleTypes = src.StyleTypes
	}
	if src.Port != 0 {
		dst.Port = src.Port
	}
	if src.UseBrowser {
		dst.UseBrowser = true
	}
	if src.Verbose {
		dst.Verbose = true
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func boolEnv(key string) bool {
	v := strings.ToLower(os.Getenv(key))
	return v == "1" || v == "true" || v == "yes"
}
