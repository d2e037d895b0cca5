package version

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// CheckRequirement checks a batch configuration's version requirement
// against the binary version.
//
// The requirement is a semver constraint such as ">= 0.3, < 1.0" or "~0.4".
// An empty requirement or a "main" (development) binary always passes.
//
// Examples:
//   - Binary 0.4.2, requirement "~0.4"  -> OK
//   - Binary 0.4.2, requirement ">= 0.5" -> ERROR
//   - Binary main,  requirement ">= 9"  -> OK (dev build, skip check)
func CheckRequirement(binaryVersion, requirement string) error {
	requirement = strings.TrimSpace(requirement)
	if requirement == "" {
		return nil
	}

	constraint, err := semver.NewConstraint(requirement)
	if err != nil {
		return fmt.Errorf("invalid version requirement '%s': %w", requirement, err)
	}

	binaryVersion = strings.TrimPrefix(binaryVersion, "v")
	if binaryVersion == "main" {
		return nil
	}

	binary, err := semver.NewVersion(binaryVersion)
	if err != nil {
		return fmt.Errorf("invalid binary version '%s': %w", binaryVersion, err)
	}

	if ok, reasons := constraint.Validate(binary); !ok {
		messages := make([]string, len(reasons))
		for i, reason := range reasons {
			messages[i] = reason.Error()
		}

		return fmt.Errorf("version %s does not satisfy '%s': %s", binary, requirement, strings.Join(messages, "; "))
	}

	return nil
}
