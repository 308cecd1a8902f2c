// Package composer assembles the system prompt from harvested site
// content, bounded by a configurable character budget.
package composer

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/kwlam/sitechat/internal/config"
	"github.com/kwlam/sitechat/internal/content"
	"github.com/kwlam/sitechat/internal/conversation"
	"github.com/kwlam/sitechat/internal/fetcher"
	"github.com/kwlam/sitechat/internal/textutil"
)

// TruncationNotice is appended whenever the prompt was cut to fit the
// budget, so the model knows its context is incomplete.
const TruncationNotice = "[Content truncated due to length limits]"

// truncationReserve covers the notice and joining newlines when the
// external block is carved out before truncating the base.
const truncationReserve = 100

// minBaseChars is the smallest base prompt worth preserving the
// external block for; below this the whole prompt is cut flat.
const minBaseChars = 1000

// Composer builds system prompts. It holds only immutable settings and
// is safe for concurrent use.
type Composer struct {
	site    config.SiteSettings
	prompt  config.PromptSettings
	ai      config.AISettings
	contact config.ContactSettings
}

// New creates a Composer from the loaded settings.
func New(cfg *config.Settings) *Composer {
	return &Composer{
		site:    cfg.Site,
		prompt:  cfg.Prompt,
		ai:      cfg.AI,
		contact: cfg.Contact,
	}
}

// BuildPrompt renders the full system prompt for one request in the
// given locale, then enforces the character budget.
func (c *Composer) BuildPrompt(locale config.Locale, h content.Harvest) string {
	articles := formatArticles(h.Articles)
	pages := formatPages(h.Pages)
	catalog := formatCatalog(h.Items, h.Categories, h.Popular)
	fallback := c.escalationFallback(locale)

	var prompt string
	if locale == config.LocaleEnglish {
		prompt = fmt.Sprintf(englishTemplate,
			c.site.Name, c.site.Name, c.site.Description, c.site.URL,
			articles, pages, catalog, h.External, fallback,
			c.ai.SystemPrompt, c.ai.GuidanceText)
	} else {
		prompt = fmt.Sprintf(chineseTemplate,
			c.site.Name, c.site.Name, c.site.Description, c.site.URL,
			articles, pages, catalog, h.External, fallback,
			c.ai.SystemPrompt, c.ai.GuidanceText)
	}

	return c.truncate(textutil.Clean(prompt))
}

// truncate enforces MaxPromptChars. When an external-source block is
// present and enough budget remains for a useful base, the base content
// is cut and the external block survives whole; otherwise the prompt is
// cut flat. Either way the truncation notice is appended.
func (c *Composer) truncate(prompt string) string {
	limit := c.prompt.MaxPromptChars
	if limit <= 0 || utf8.RuneCountInString(prompt) <= limit {
		return prompt
	}

	if pos := strings.Index(prompt, fetcher.Marker); pos >= 0 {
		base := prompt[:pos]
		external := prompt[pos:]
		available := limit - utf8.RuneCountInString(external) - truncationReserve
		if available >= minBaseChars {
			return textutil.TruncateRunes(base, available) + "\n\n" + external + "\n\n" + TruncationNotice
		}
	}

	return textutil.TruncateRunes(prompt, limit) + "\n\n" + TruncationNotice
}

// HistoryBound returns how many prior turns to replay.
func (c *Composer) HistoryBound() int {
	return c.prompt.MaxHistoryTurns
}

// FilterTurns drops malformed history entries so a bad row can never
// poison the completion request.
func FilterTurns(turns []conversation.Turn) []conversation.Turn {
	out := turns[:0]
	for _, t := range turns {
		if t.Role == "" || strings.TrimSpace(t.Body) == "" {
			continue
		}
		out = append(out, t)
	}
	return out
}

func formatArticles(snippets []content.Snippet) string {
	var b strings.Builder
	for _, s := range snippets {
		fmt.Fprintf(&b, "Title: %s\nContent: %s\nURL: %s\n\n", s.Title, s.Body, s.URL)
	}
	return b.String()
}

func formatPages(snippets []content.Snippet) string {
	var b strings.Builder
	for _, s := range snippets {
		fmt.Fprintf(&b, "Page: %s\nContent: %s\nURL: %s\n\n", s.Title, s.Body, s.URL)
	}
	return b.String()
}

func formatCatalog(items []content.Item, categories []content.Category, popular []content.Item) string {
	if len(items) == 0 && len(categories) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("商品資訊：\n")
	for _, item := range items {
		fmt.Fprintf(&b, "產品名稱: %s\n", item.Name)
		fmt.Fprintf(&b, "價格: %s\n", item.PriceHTML)
		fmt.Fprintf(&b, "分類: %s\n", strings.Join(item.Categories, ", "))
		stock := "缺貨"
		if item.StockStatus == "instock" {
			stock = "有庫存"
		}
		fmt.Fprintf(&b, "庫存狀態: %s\n", stock)
		if item.SKU != "" {
			fmt.Fprintf(&b, "產品編號: %s\n", item.SKU)
		}
		if item.Sales > 0 {
			fmt.Fprintf(&b, "銷售數量: %d\n", item.Sales)
		}
		if item.Description != "" {
			fmt.Fprintf(&b, "詳細描述: %s\n", item.Description)
		}
		fmt.Fprintf(&b, "連結: %s\n\n", item.Permalink)
	}

	if len(categories) > 0 {
		b.WriteString("商品分類：\n")
		for _, cat := range categories {
			fmt.Fprintf(&b, "分類: %s\n", cat.Name)
			if cat.Description != "" {
				fmt.Fprintf(&b, "描述: %s\n", cat.Description)
			}
			if cat.Permalink != "" {
				fmt.Fprintf(&b, "連結: %s\n", cat.Permalink)
			}
			b.WriteString("\n")
		}
	}

	if len(popular) > 0 {
		b.WriteString("熱門商品：\n")
		for _, item := range popular {
			fmt.Fprintf(&b, "產品名稱: %s", item.Name)
			if item.Sales > 0 {
				fmt.Fprintf(&b, " (銷售數量: %d)", item.Sales)
			}
			if item.Permalink != "" {
				fmt.Fprintf(&b, "\n連結: %s", item.Permalink)
			}
			b.WriteString("\n\n")
		}
	}

	return b.String()
}

// escalationFallback tells the model exactly what to say when the site
// content cannot answer, pointing the user at human support.
func (c *Composer) escalationFallback(locale config.Locale) string {
	phone := digitsOnly(c.contact.WhatsAppPhone)
	if phone == "" {
		return ""
	}
	message := c.contact.WhatsAppMessage
	if message == "" {
		message = "Hello, I need assistance"
	}
	waURL := "https://wa.me/" + phone + "?text=" + url.QueryEscape(message)

	if locale == config.LocaleEnglish {
		return "If you cannot find the information the user needs from the website content above, respond with: " +
			"'I apologize, but I don't have that information available. Please contact our human support team on WhatsApp for personalized assistance: " + waURL + "'"
	}
	return "如果您無法從上述網站內容中找到用戶需要的資訊，請回應：" +
		"'抱歉，我沒有這方面的資訊。請聯繫我們的人工客服團隊，透過 WhatsApp 獲得個人化協助：" + waURL + "'"
}

func digitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}

const chineseTemplate = `您是 %s 網站的 AI 智能助手。

網站資訊：
- 網站名稱：%s
- 網站描述：%s
- 網站網址：%s

您的任務：
1. 基於以下網站內容為用戶提供有用的資訊和協助
2. 使用繁體中文回應，保持友善和專業的語調
3. 當網站內容無法完全回答用戶問題時，可以提供相關的一般性建議
4. 如需要更詳細的人工協助，可引導用戶聯繫客服

網站內容參考：

最新文章：
%s
主要頁面：
%s
%s

%s

%s

自訂指示：
%s

額外指導資訊：
%s

請根據網站內容和您的知識為用戶提供最佳的協助。`

const englishTemplate = `You are the AI intelligent assistant for %s website.

Website Information:
- Website Name: %s
- Website Description: %s
- Website URL: %s

Your Mission:
1. Provide helpful information and assistance based on the website content below
2. Respond in English with a friendly and professional tone
3. When website content cannot fully answer user questions, you may provide relevant general advice
4. If more detailed human assistance is needed, guide users to contact customer service

Website Content Reference:

Latest Articles:
%s
Main Pages:
%s
%s

%s

%s

Custom Instructions:
%s

Additional Guidance:
%s

Please provide the best assistance to users based on the website content and your knowledge.`
