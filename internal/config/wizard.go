package config

import (
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard and saves the
// result to the given path.
func RunWizard(path string) (*Settings, error) {
	fmt.Println("Welcome to sitechat! Let's configure your assistant.")
	fmt.Println()

	cfg := DefaultSettings()

	namePrompt := promptui.Prompt{Label: "Site name"}
	name, err := namePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("site name: %w", err)
	}
	cfg.Site.Name = strings.TrimSpace(name)

	descPrompt := promptui.Prompt{Label: "Site description", Default: ""}
	desc, err := descPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("site description: %w", err)
	}
	cfg.Site.Description = strings.TrimSpace(desc)

	urlPrompt := promptui.Prompt{Label: "Site URL", Default: "https://"}
	siteURL, err := urlPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("site url: %w", err)
	}
	cfg.Site.URL = strings.TrimRight(strings.TrimSpace(siteURL), "/")
	cfg.Content.BaseURL = cfg.Site.URL

	localePrompt := promptui.Select{
		Label: "Default response language",
		Items: []string{"zh — 繁體中文", "en — English"},
	}
	localeIdx, _, err := localePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("locale selection: %w", err)
	}
	if localeIdx == 1 {
		cfg.Site.DefaultLocale = LocaleEnglish
	}

	providerPrompt := promptui.Select{
		Label: "Select completion provider",
		Items: []string{"openrouter — hosted gateway", "custom — your own endpoint"},
	}
	providerIdx, _, err := providerPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("provider selection: %w", err)
	}

	if providerIdx == 1 {
		cfg.AI.Provider = ProviderCustom
		cfg.AI.Model = "gpt-3.5-turbo"
		endpointPrompt := promptui.Prompt{Label: "Completion endpoint URL"}
		endpoint, err := endpointPrompt.Run()
		if err != nil {
			return nil, fmt.Errorf("endpoint: %w", err)
		}
		cfg.AI.Endpoint = strings.TrimSpace(endpoint)
	}

	keyPrompt := promptui.Prompt{
		Label: "API key (leave blank to use OPENROUTER_API_KEY)",
		Mask:  '*',
	}
	key, err := keyPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("api key: %w", err)
	}
	cfg.AI.APIKey = strings.TrimSpace(key)

	modelPrompt := promptui.Prompt{Label: "Model", Default: cfg.AI.Model}
	model, err := modelPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("model: %w", err)
	}
	cfg.AI.Model = strings.TrimSpace(model)

	commercePrompt := promptui.Select{
		Label: "Does the site run a commerce catalog?",
		Items: []string{"no", "yes"},
	}
	commerceIdx, _, err := commercePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("commerce selection: %w", err)
	}
	cfg.Content.CommerceEnabled = commerceIdx == 1

	waPrompt := promptui.Prompt{
		Label:   "WhatsApp phone for human handoff (blank to skip)",
		Default: "",
	}
	phone, err := waPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("whatsapp phone: %w", err)
	}
	cfg.Contact.WhatsAppPhone = strings.TrimSpace(phone)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Save(path); err != nil {
		return nil, err
	}

	fmt.Println()
	fmt.Printf("Configuration saved to %s\n", path)
	fmt.Println("Run 'sitechat test-api' to verify the provider connection,")
	fmt.Println("then 'sitechat serve' to start the assistant.")
	return cfg, nil
}
