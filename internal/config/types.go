package config

// ProviderType identifies a completion provider backend.
type ProviderType string

const (
	// ProviderOpenRouter is the hosted multi-model gateway. Models are
	// selected by a "vendor/model-name" identifier.
	ProviderOpenRouter ProviderType = "openrouter"
	// ProviderCustom is an operator-supplied HTTP endpoint speaking the
	// chat-completion JSON contract.
	ProviderCustom ProviderType = "custom"
)

// Locale is a supported response language.
type Locale string

const (
	LocaleEnglish Locale = "en"
	LocaleChinese Locale = "zh"
)

// Settings is the full sitechat configuration, corresponding to
// sitechat.yml. It is loaded once and passed by parameter through the
// pipeline; nothing reads it from ambient global state.
type Settings struct {
	Server    ServerSettings    `yaml:"server" koanf:"server"`
	Site      SiteSettings      `yaml:"site" koanf:"site"`
	AI        AISettings        `yaml:"ai" koanf:"ai"`
	Harvest   HarvestSettings   `yaml:"harvest" koanf:"harvest"`
	Prompt    PromptSettings    `yaml:"prompt" koanf:"prompt"`
	Content   ContentSettings   `yaml:"content" koanf:"content"`
	Contact   ContactSettings   `yaml:"contact" koanf:"contact"`
	Retention RetentionSettings `yaml:"retention" koanf:"retention"`
}

// ServerSettings holds HTTP server configuration.
type ServerSettings struct {
	Port     int    `yaml:"port" koanf:"port"`
	DataDir  string `yaml:"data_dir" koanf:"data_dir"`
	AllowAll bool   `yaml:"allow_all_cors" koanf:"allow_all_cors"`
}

// SiteSettings describes the site the assistant speaks for.
type SiteSettings struct {
	Name          string `yaml:"name" koanf:"name"`
	Description   string `yaml:"description" koanf:"description"`
	URL           string `yaml:"url" koanf:"url"`
	DefaultLocale Locale `yaml:"default_locale" koanf:"default_locale"`
}

// AISettings configures the completion provider.
type AISettings struct {
	Provider     ProviderType `yaml:"provider" koanf:"provider"`
	APIKey       string       `yaml:"api_key" koanf:"api_key"`
	Endpoint     string       `yaml:"endpoint" koanf:"endpoint"`
	Model        string       `yaml:"model" koanf:"model"`
	SystemPrompt string       `yaml:"system_prompt" koanf:"system_prompt"`
	GuidanceText string       `yaml:"guidance_text" koanf:"guidance_text"`
	Debug        bool         `yaml:"debug" koanf:"debug"`
	// InsecureSkipVerify disables TLS verification for the custom
	// endpoint backend only. Self-hosted gateways frequently run with
	// self-signed certificates.
	InsecureSkipVerify bool `yaml:"insecure_skip_verify" koanf:"insecure_skip_verify"`
}

// WeightedKeyword scores a page as important when matched in its
// title, slug or body.
type WeightedKeyword struct {
	Word   string `yaml:"word" koanf:"word"`
	Weight int    `yaml:"weight" koanf:"weight"`
}

// HarvestSettings bounds how much site content enters the prompt.
type HarvestSettings struct {
	MaxArticles        int               `yaml:"max_articles" koanf:"max_articles"`
	MaxPages           int               `yaml:"max_pages" koanf:"max_pages"`
	MaxProducts        int               `yaml:"max_products" koanf:"max_products"`
	ArticleWords       int               `yaml:"article_words" koanf:"article_words"`
	PageWords          int               `yaml:"page_words" koanf:"page_words"`
	ImportantPageWords int               `yaml:"important_page_words" koanf:"important_page_words"`
	PageKeywords       []WeightedKeyword `yaml:"page_keywords" koanf:"page_keywords"`
	ImportantThreshold int               `yaml:"important_threshold" koanf:"important_threshold"`
	MinImportantPages  int               `yaml:"min_important_pages" koanf:"min_important_pages"`
	Parallel           bool              `yaml:"parallel" koanf:"parallel"`
}

// PromptSettings bounds the assembled prompt.
type PromptSettings struct {
	MaxPromptChars  int `yaml:"max_prompt_chars" koanf:"max_prompt_chars"`
	MaxHistoryTurns int `yaml:"max_history_turns" koanf:"max_history_turns"`
}

// ContentSettings points at the CMS content API the harvester reads.
type ContentSettings struct {
	BaseURL         string   `yaml:"base_url" koanf:"base_url"`
	SitemapURLs     []string `yaml:"sitemap_urls" koanf:"sitemap_urls"`
	CommerceEnabled bool     `yaml:"commerce_enabled" koanf:"commerce_enabled"`
}

// ContactSettings holds per-platform contact handles for the widget's
// redirect links and the assistant's escalation fallback.
type ContactSettings struct {
	WhatsAppPhone   string `yaml:"whatsapp_phone" koanf:"whatsapp_phone"`
	WhatsAppMessage string `yaml:"whatsapp_message" koanf:"whatsapp_message"`
	LineID          string `yaml:"line_id" koanf:"line_id"`
	TelegramUser    string `yaml:"telegram_user" koanf:"telegram_user"`
	MessengerPage   string `yaml:"messenger_page" koanf:"messenger_page"`
	InstagramUser   string `yaml:"instagram_user" koanf:"instagram_user"`
	WeChatID        string `yaml:"wechat_id" koanf:"wechat_id"`
	Email           string `yaml:"email" koanf:"email"`
	Phone           string `yaml:"phone" koanf:"phone"`
}

// RetentionSettings controls scheduled conversation cleanup.
type RetentionSettings struct {
	Days int `yaml:"days" koanf:"days"`
}
