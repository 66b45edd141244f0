package validation

import (
	"fmt"
	"regexp"
	"strings"
)

// MaxChainNameLen is the longest chain name the kernel accepts
// (XT_EXTENSION_MAXNAMELEN minus the terminating NUL).
const MaxChainNameLen = 28

var (
	// Valid interface name: alphanumeric, dash, underscore, dot (for VLANs),
	// an optional trailing + wildcard, max 15 chars
	interfaceNameRegex = regexp.MustCompile(`^[a-zA-Z0-9_.-]{1,15}\+?$`)

	// Valid chain or target name: alphanumeric plus -_.:+
	chainNameRegex = regexp.MustCompile(`^[a-zA-Z0-9_.:+-]+$`)

	// Dangerous characters that should never appear in identifiers
	dangerousChars = []string{";", "|", "&", "$", "`", "(", ")", "<", ">", "\\", "\"", "'", "\n", "\r"}
)

// ValidateInterfaceName validates a network interface name
func ValidateInterfaceName(name string) error {
	if name == "" {
		return fmt.Errorf("interface name cannot be empty")
	}

	if len(strings.TrimSuffix(name, "+")) > 15 {
		return fmt.Errorf("interface name too long (max 15 characters): %s", name)
	}

	if !interfaceNameRegex.MatchString(name) {
		return fmt.Errorf("invalid interface name: %s (must be alphanumeric with -_. and an optional trailing +)", name)
	}

	return checkDangerous("interface name", name)
}

// ValidateChainName validates an iptables chain or target name before it is
// handed to the iptables binary.
func ValidateChainName(name string) error {
	if name == "" {
		return fmt.Errorf("chain name cannot be empty")
	}

	if len(name) > MaxChainNameLen {
		return fmt.Errorf("chain name too long (max %d characters): %s", MaxChainNameLen, name)
	}

	if strings.HasPrefix(name, "-") {
		return fmt.Errorf("chain name cannot start with '-': %s", name)
	}

	if !chainNameRegex.MatchString(name) {
		return fmt.Errorf("invalid chain name: %s (must be alphanumeric with -_.:+)", name)
	}

	return checkDangerous("chain name", name)
}

func checkDangerous(what, s string) error {
	for _, char := range dangerousChars {
		if strings.Contains(s, char) {
			return fmt.Errorf("%s contains dangerous character: %q", what, char)
		}
	}
	return nil
}
