package tui

// Theme captures optional formatting hints the renderer applies when printing
// messages.
type Theme struct {
	InfoPrefix  string
	ErrorPrefix string
	// SecretMask replaces secret values in summaries.
	SecretMask string
}

// DefaultTheme is used when no theme is configured.
var DefaultTheme = Theme{
	InfoPrefix:  "",
	ErrorPrefix: "! ",
	SecretMask:  "********",
}

// Option configures the TUI renderer.
type Option func(*Renderer)

// WithPromptDriver overrides the prompt driver used by the renderer.
func WithPromptDriver(driver PromptDriver) Option {
	return func(r *Renderer) {
		if driver != nil {
			r.driver = driver
		}
	}
}

// WithTheme applies message prefixes and the secret mask.
func WithTheme(theme Theme) Option {
	return func(r *Renderer) {
		r.theme = theme
	}
}
