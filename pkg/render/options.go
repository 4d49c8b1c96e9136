package render

// RenderOptions describe per-request data that renderers can use to customise
// their output without mutating the step view.
type RenderOptions struct {
	// Action is the URL the rendered form posts to. Renderers fall back to
	// their own default when empty.
	Action string
	// Hidden carries extra inputs emitted with the form, for example the step
	// index or carried answers. Names are trimmed and sorted before rendering.
	Hidden map[string]string
	// Errors surfaces server-side validation feedback keyed by field name. Use
	// MapErrorPayload to split raw payloads into field and form messages.
	Errors map[string][]string
	// Locale and Translator localise step titles, labels and action text.
	// Untranslated keys keep the text from the step definition.
	Locale     string
	Translator Translator
	OnMissing  MissingTranslationHandler
}
