package regwizard

import (
	"fmt"
	"os"
	"strings"

	"github.com/goliatone/go-regwizard/pkg/stepdef"
)

// LoadDefinition reads registration.yaml from dir. An empty dir returns the
// embedded definitions.
func LoadDefinition(dir string) (stepdef.Definition, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return stepdef.Default(), nil
	}
	info, err := os.Stat(dir)
	if err != nil {
		return stepdef.Definition{}, fmt.Errorf("regwizard: steps dir: %w", err)
	}
	if !info.IsDir() {
		return stepdef.Definition{}, fmt.Errorf("regwizard: steps dir %s is not a directory", dir)
	}
	return stepdef.LoadFS(os.DirFS(dir), stepdef.DefaultFile)
}
