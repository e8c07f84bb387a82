package config

import (
	"os"

	apierrors "git.home.luguber.info/inful/apigen/internal/errors"
)

const starterConfig = `# apigen configuration
modules:
  - name: mymodule
    inventory: ./stubs/mymodule.json
    output_path: mymodule

output:
  directory: ./site/api
  clean: false
  state_db: ./apigen-state.db

# Object description option overlays. Patterns match "domain:objtype" keys.
# options:
#   - pattern: "py:.*method"
#     options:
#       wrap_signatures_column_limit: 80

logging:
  level: info
`

// WriteStarter writes a commented starter configuration file.
func WriteStarter(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return apierrors.New(apierrors.CategoryConfig, apierrors.SeverityFatal,
				"configuration file already exists, use --force to overwrite").
				WithContext("path", path)
		}
	}
	if err := os.WriteFile(path, []byte(starterConfig), 0o644); err != nil {
		return apierrors.OutputError("write starter config", err)
	}
	return nil
}
