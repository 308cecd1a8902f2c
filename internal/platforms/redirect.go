// Package platforms builds handoff links for external messaging apps.
package platforms

import (
	"errors"
	"net/url"
	"strings"

	"github.com/kwlam/sitechat/internal/config"
)

var (
	// ErrNotConfigured means the platform exists but has no contact
	// handle in settings.
	ErrNotConfigured = errors.New("platform not configured")
	// ErrUnknown means the platform name is not recognized.
	ErrUnknown = errors.New("unknown platform")
)

// QRPrefix marks a redirect target the widget must render as a QR code
// instead of navigating to.
const QRPrefix = "qr:"

// RedirectURL returns the handoff link for a messaging platform.
func RedirectURL(platform string, contact config.ContactSettings) (string, error) {
	switch platform {
	case "whatsapp":
		phone := phoneDigits(contact.WhatsAppPhone)
		if phone == "" {
			return "", ErrNotConfigured
		}
		message := contact.WhatsAppMessage
		if message == "" {
			message = "Hello, I need assistance"
		}
		return "https://wa.me/" + strings.TrimPrefix(phone, "+") + "?text=" + url.QueryEscape(message), nil

	case "line":
		if contact.LineID == "" {
			return "", ErrNotConfigured
		}
		return "https://line.me/R/ti/p/" + contact.LineID, nil

	case "telegram":
		if contact.TelegramUser == "" {
			return "", ErrNotConfigured
		}
		return "https://t.me/" + contact.TelegramUser, nil

	case "messenger", "facebook":
		if contact.MessengerPage == "" {
			return "", ErrNotConfigured
		}
		return "https://m.me/" + contact.MessengerPage, nil

	case "instagram":
		if contact.InstagramUser == "" {
			return "", ErrNotConfigured
		}
		return "https://ig.me/m/" + contact.InstagramUser, nil

	case "wechat":
		// No deep-link scheme; the widget shows a QR code for the id.
		if contact.WeChatID == "" {
			return "", ErrNotConfigured
		}
		return QRPrefix + contact.WeChatID, nil

	case "email":
		if contact.Email == "" {
			return "", ErrNotConfigured
		}
		return "mailto:" + contact.Email + "?subject=" + url.QueryEscape("Website Inquiry"), nil

	case "phone":
		phone := phoneDigits(contact.Phone)
		if phone == "" {
			return "", ErrNotConfigured
		}
		return "tel:" + phone, nil
	}

	return "", ErrUnknown
}

// phoneDigits keeps digits and a leading plus sign.
func phoneDigits(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= '0' && r <= '9' || (r == '+' && i == 0) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
