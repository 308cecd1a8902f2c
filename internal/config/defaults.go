package config

// DefaultPageKeywords is the built-in important-page keyword list. The
// operator can replace it wholesale in sitechat.yml; weights accumulate
// across title, slug and body matches and a page is classified important
// once the total reaches Harvest.ImportantThreshold.
var DefaultPageKeywords = []WeightedKeyword{
	{Word: "contact", Weight: 3},
	{Word: "聯絡", Weight: 3},
	{Word: "聯繫", Weight: 3},
	{Word: "address", Weight: 3},
	{Word: "地址", Weight: 3},
	{Word: "location", Weight: 3},
	{Word: "shop", Weight: 2},
	{Word: "store", Weight: 2},
	{Word: "門店", Weight: 2},
	{Word: "店舖", Weight: 2},
	{Word: "門市", Weight: 2},
	{Word: "分店", Weight: 2},
	{Word: "hours", Weight: 2},
	{Word: "營業時間", Weight: 3},
	{Word: "business hours", Weight: 3},
	{Word: "opening hours", Weight: 3},
	{Word: "about", Weight: 1},
	{Word: "關於", Weight: 1},
	{Word: "service", Weight: 1},
	{Word: "服務", Weight: 1},
	{Word: "phone", Weight: 2},
	{Word: "電話", Weight: 2},
	{Word: "whatsapp", Weight: 2},
	{Word: "email", Weight: 1},
	{Word: "fax", Weight: 1},
	{Word: "傳真", Weight: 1},
}

// DefaultSettings returns Settings with sensible defaults.
func DefaultSettings() *Settings {
	return &Settings{
		Server: ServerSettings{
			Port:    8377,
			DataDir: "data",
		},
		Site: SiteSettings{
			DefaultLocale: LocaleChinese,
		},
		AI: AISettings{
			Provider:           ProviderOpenRouter,
			Model:              "openai/gpt-3.5-turbo",
			InsecureSkipVerify: true,
		},
		Harvest: HarvestSettings{
			MaxArticles:        50,
			MaxPages:           10,
			MaxProducts:        50,
			ArticleWords:       3000,
			PageWords:          3000,
			ImportantPageWords: 3000,
			PageKeywords:       DefaultPageKeywords,
			ImportantThreshold: 2,
			MinImportantPages:  5,
			Parallel:           true,
		},
		Prompt: PromptSettings{
			MaxPromptChars:  50000,
			MaxHistoryTurns: 5,
		},
		Contact: ContactSettings{
			WhatsAppMessage: "Hello, I need assistance",
		},
		Retention: RetentionSettings{
			Days: 30,
		},
	}
}
