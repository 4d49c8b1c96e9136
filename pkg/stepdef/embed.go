package stepdef

import (
	"embed"
	"io/fs"
	"sync"
)

//go:embed definitions/*
var embeddedDefinitions embed.FS

var (
	defaultOnce sync.Once
	defaultDef  Definition
)

// EmbeddedFS returns the bundled definition files.
func EmbeddedFS() fs.FS {
	sub, err := fs.Sub(embeddedDefinitions, "definitions")
	if err != nil {
		// The embed directive guarantees the subpath exists.
		panic(err)
	}
	return sub
}

// Default returns a copy of the bundled registration flow.
func Default() Definition {
	defaultOnce.Do(func() {
		def, err := LoadFS(EmbeddedFS(), DefaultFile)
		if err != nil {
			panic(err)
		}
		defaultDef = def
	})
	return defaultDef.Clone()
}
