package templates

import (
	"fmt"
	"regexp"
	"strings"
)

// Token names used for the three template colours in go-theme manifests.
const (
	TokenPrimary   = "primary"
	TokenSecondary = "secondary"
	TokenAccent    = "accent"
)

var hexColorPattern = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Config describes one visual variant of the document layouts.
type Config struct {
	ID             string             `json:"id" yaml:"id"`
	Name           string             `json:"name" yaml:"name"`
	Description    string             `json:"description" yaml:"description"`
	PrimaryColor   string             `json:"primaryColor" yaml:"primaryColor"`
	SecondaryColor string             `json:"secondaryColor" yaml:"secondaryColor"`
	AccentColor    string             `json:"accentColor" yaml:"accentColor"`
	Variants       map[string]Palette `json:"variants,omitempty" yaml:"variants,omitempty"`
}

// Palette overrides a subset of the template colours for a hosting context
// (for example "print" or "email"). Empty values keep the base colour.
type Palette struct {
	PrimaryColor   string `json:"primaryColor,omitempty" yaml:"primaryColor,omitempty"`
	SecondaryColor string `json:"secondaryColor,omitempty" yaml:"secondaryColor,omitempty"`
	AccentColor    string `json:"accentColor,omitempty" yaml:"accentColor,omitempty"`
}

// Colors is the resolved colour triple handed to layouts.
type Colors struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
	Accent    string `json:"accent"`
}

// Colors returns the base colour triple.
func (c Config) Colors() Colors {
	return Colors{
		Primary:   c.PrimaryColor,
		Secondary: c.SecondaryColor,
		Accent:    c.AccentColor,
	}
}

// Tokens returns the base colours keyed by token name.
func (c Config) Tokens() map[string]string {
	return map[string]string{
		TokenPrimary:   c.PrimaryColor,
		TokenSecondary: c.SecondaryColor,
		TokenAccent:    c.AccentColor,
	}
}

func (p Palette) tokens() map[string]string {
	out := make(map[string]string, 3)
	if p.PrimaryColor != "" {
		out[TokenPrimary] = p.PrimaryColor
	}
	if p.SecondaryColor != "" {
		out[TokenSecondary] = p.SecondaryColor
	}
	if p.AccentColor != "" {
		out[TokenAccent] = p.AccentColor
	}
	return out
}

func (c Config) normalise() Config {
	c.ID = strings.ToLower(strings.TrimSpace(c.ID))
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" && c.ID != "" {
		c.Name = strings.ToUpper(c.ID[:1]) + c.ID[1:]
	}
	c.Description = strings.TrimSpace(c.Description)
	c.PrimaryColor = strings.TrimSpace(c.PrimaryColor)
	c.SecondaryColor = strings.TrimSpace(c.SecondaryColor)
	c.AccentColor = strings.TrimSpace(c.AccentColor)
	if len(c.Variants) > 0 {
		variants := make(map[string]Palette, len(c.Variants))
		for name, palette := range c.Variants {
			key := strings.ToLower(strings.TrimSpace(name))
			if key == "" {
				continue
			}
			variants[key] = Palette{
				PrimaryColor:   strings.TrimSpace(palette.PrimaryColor),
				SecondaryColor: strings.TrimSpace(palette.SecondaryColor),
				AccentColor:    strings.TrimSpace(palette.AccentColor),
			}
		}
		c.Variants = variants
	}
	return c
}

func (c Config) validate() error {
	if c.ID == "" {
		return fmt.Errorf("%w: template id is required", ErrInvalidCatalog)
	}
	colours := map[string]string{
		"primaryColor":   c.PrimaryColor,
		"secondaryColor": c.SecondaryColor,
		"accentColor":    c.AccentColor,
	}
	for _, field := range []string{"primaryColor", "secondaryColor", "accentColor"} {
		if !hexColorPattern.MatchString(colours[field]) {
			return fmt.Errorf("%w: template %q has invalid %s %q", ErrInvalidCatalog, c.ID, field, colours[field])
		}
	}
	for name, palette := range c.Variants {
		for token, value := range palette.tokens() {
			if !hexColorPattern.MatchString(value) {
				return fmt.Errorf("%w: template %q variant %q has invalid %s colour %q", ErrInvalidCatalog, c.ID, name, token, value)
			}
		}
	}
	return nil
}
