package version

import (
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/rxtech-lab/argo-screener/pkg/errors"
)

// CheckConfigCompatibility checks that a config file written for
// configVersion can be read by a screener at binaryVersion.
//
// Rules:
//   - an empty config version or "main" on either side skips the check
//   - major versions must match
//   - the binary minor version must be at least the config minor version
//
// Examples:
//   - binary 1.2.0, config 1.2.0 -> OK
//   - binary 1.3.0, config 1.2.4 -> OK (newer binary)
//   - binary 1.2.0, config 1.3.0 -> ERROR (config uses newer keys)
//   - binary 2.0.0, config 1.2.0 -> ERROR (major differs)
func CheckConfigCompatibility(binaryVersion, configVersion string) error {
	binaryVersion = strings.TrimPrefix(binaryVersion, "v")
	configVersion = strings.TrimPrefix(configVersion, "v")

	if configVersion == "" || binaryVersion == "main" || configVersion == "main" {
		return nil
	}

	binary, err := semver.NewVersion(binaryVersion)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "invalid screener version '%s'", binaryVersion)
	}

	cfg, err := semver.NewVersion(configVersion)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "invalid config version '%s'", configVersion)
	}

	if binary.Major() != cfg.Major() {
		return errors.Newf(errors.ErrCodeInvalidConfiguration, "major version mismatch: screener is %d.x.x but config requires %d.x.x",
			binary.Major(), cfg.Major())
	}

	if binary.Minor() < cfg.Minor() {
		return errors.Newf(errors.ErrCodeInvalidConfiguration, "minor version too old: screener is %d.%d.x but config requires %d.%d.x",
			binary.Major(), binary.Minor(), cfg.Major(), cfg.Minor())
	}

	return nil
}
