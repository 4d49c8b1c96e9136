package openapi

type loadOptions struct {
	validate         bool
	validateExamples bool
	externalRefs     bool
}

// LoadOption customises Load.
type LoadOption func(*loadOptions)

// WithoutValidation skips document validation after parsing.
func WithoutValidation() LoadOption {
	return func(o *loadOptions) {
		o.validate = false
	}
}

// WithExamplesValidation also validates example values against schemas.
func WithExamplesValidation() LoadOption {
	return func(o *loadOptions) {
		o.validateExamples = true
	}
}

// WithExternalRefs allows $ref values pointing outside the document.
func WithExternalRefs() LoadOption {
	return func(o *loadOptions) {
		o.externalRefs = true
	}
}

func newLoadOptions(options ...LoadOption) loadOptions {
	cfg := loadOptions{validate: true}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}
