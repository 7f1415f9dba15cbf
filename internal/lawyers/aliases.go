package lawyers

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// Aliases maps variant spellings of a lawyer's name, as found in verdicts,
// to the canonical spelling. A nil Aliases resolves every name to itself.
type Aliases map[string]string

// Resolve returns the canonical spelling of name.
func (a Aliases) Resolve(name string) string {
	if canonical, ok := a[name]; ok && canonical != "" {
		return canonical
	}
	return name
}

// LoadAliases reads a JSON object of verdict name -> canonical name. A
// missing file yields an empty table.
func LoadAliases(path string) (Aliases, error) {
	if path == "" {
		return Aliases{}, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Aliases{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading name aliases: %w", err)
	}
	var a Aliases
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("parsing name aliases %s: %w", path, err)
	}
	return a, nil
}

// CanonicalName normalizes a name typed by a user and resolves it through
// the alias file at path.
func CanonicalName(path, name string) (string, error) {
	aliases, err := LoadAliases(path)
	if err != nil {
		return "", err
	}
	return aliases.Resolve(NormalizeName(name)), nil
}
