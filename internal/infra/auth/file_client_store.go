package auth

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

var ErrInvalidSeedFile = fmt.Errorf("invalid key seed file")

// seedFile is the YAML layout of a key seed file:
//
//	clients:
//	  frontend:
//	    description: web app
//	    api_keys:
//	      - bst_prod_...
type seedFile struct {
	Clients map[string]seedClient `yaml:"clients"`
}

type seedClient struct {
	APIKeys     []string `yaml:"api_keys"`
	Description string   `yaml:"description,omitempty"`
}

// SeedEntry is one token to pre-register at startup.
type SeedEntry struct {
	ClientName string
	Token      string
}

// LoadSeedFile reads and validates a key seed file. Entries come back ordered by client name.
func LoadSeedFile(filePath string) ([]SeedEntry, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read key seed file %s: %w", filePath, err)
	}

	var file seedFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to unmarshal key seed file: %w", err)
	}

	if len(file.Clients) == 0 {
		return nil, fmt.Errorf("%w: no clients defined", ErrInvalidSeedFile)
	}

	names := make([]string, 0, len(file.Clients))
	for name := range file.Clients {
		names = append(names, name)
	}
	sort.Strings(names)

	seen := make(map[string]string)
	var entries []SeedEntry
	for _, name := range names {
		client := file.Clients[name]
		if len(client.APIKeys) == 0 {
			return nil, fmt.Errorf("%w: client %q has no api_keys", ErrInvalidSeedFile, name)
		}
		for _, token := range client.APIKeys {
			if token == "" {
				return nil, fmt.Errorf("%w: client %q has an empty api key", ErrInvalidSeedFile, name)
			}
			if owner, dup := seen[token]; dup {
				return nil, fmt.Errorf("%w: api key of %q is also listed under %q", ErrInvalidSeedFile, name, owner)
			}
			seen[token] = name
			entries = append(entries, SeedEntry{ClientName: name, Token: token})
		}
	}

	return entries, nil
}

// MarshalSeedFile renders a seed file holding the given entries.
func MarshalSeedFile(entries []SeedEntry) ([]byte, error) {
	file := seedFile{Clients: make(map[string]seedClient)}
	for _, e := range entries {
		client := file.Clients[e.ClientName]
		client.APIKeys = append(client.APIKeys, e.Token)
		file.Clients[e.ClientName] = client
	}
	return yaml.Marshal(file)
}
