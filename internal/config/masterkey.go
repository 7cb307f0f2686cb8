package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ericfisherdev/simplekeystore/internal/domain/model"
)

// MasterKeyVar names both the environment variable and the netrc machine
// entry that hold the master key.
const MasterKeyVar = "SIMPLE_KEYSTORE_KEY"

// ResolveMasterKey returns the encoded master key from the environment, or
// failing that from the password of "machine SIMPLE_KEYSTORE_KEY" in the
// netrc file ($NETRC, default ~/.netrc).
func ResolveMasterKey(opts LoadOptions) (string, error) {
	if value, ok := lookupEnv(opts, MasterKeyVar); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value), nil
	}

	path, err := netrcPath(opts)
	if err != nil {
		return "", err
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s is not set and %s does not exist", model.ErrConfiguration, MasterKeyVar, path)
		}
		return "", fmt.Errorf("%w: open %s: %v", model.ErrConfiguration, path, err)
	}
	defer f.Close()

	password, found, err := netrcPassword(f, MasterKeyVar)
	if err != nil {
		return "", fmt.Errorf("%w: parse %s: %v", model.ErrConfiguration, path, err)
	}
	if !found || password == "" {
		return "", fmt.Errorf("%w: %s is not set and %s has no %q machine entry", model.ErrConfiguration, MasterKeyVar, path, MasterKeyVar)
	}
	return password, nil
}

func netrcPath(opts LoadOptions) (string, error) {
	if value, ok := lookupEnv(opts, "NETRC"); ok && value != "" {
		return value, nil
	}
	home, err := homeDir(opts)
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".netrc"), nil
}

// netrcPassword scans netrc tokens for the password of machine. A "default"
// entry is used only when no machine entry matches. Macro definitions are
// skipped up to the next blank line.
func netrcPassword(r io.Reader, machine string) (string, bool, error) {
	scanner := bufio.NewScanner(r)

	var (
		inMacro         bool
		current         string // machine of the entry being read; "" before any entry
		isDefault       bool
		defaultPassword string
		haveDefault     bool
		pendingKeyword  string
	)

	for scanner.Scan() {
		line := scanner.Text()
		if inMacro {
			if strings.TrimSpace(line) == "" {
				inMacro = false
			}
			continue
		}
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}

		for _, tok := range strings.Fields(line) {
			if pendingKeyword != "" {
				switch pendingKeyword {
				case "machine":
					current, isDefault = tok, false
				case "password":
					if !isDefault && current == machine {
						return tok, true, nil
					}
					if isDefault {
						defaultPassword, haveDefault = tok, true
					}
				case "macdef":
					inMacro = true
				}
				pendingKeyword = ""
				if inMacro {
					break
				}
				continue
			}

			switch tok {
			case "machine", "login", "password", "account", "macdef":
				pendingKeyword = tok
			case "default":
				current, isDefault = "", true
			default:
				return "", false, fmt.Errorf("unexpected token %q", tok)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return "", false, err
	}
	if pendingKeyword != "" {
		return "", false, fmt.Errorf("missing value after %q", pendingKeyword)
	}

	return defaultPassword, haveDefault, nil
}
