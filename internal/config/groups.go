package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DefaultOrg          = "eclipse-score"
	DefaultIncludeBots  = false
	DefaultSkipForks    = true
	DefaultSkipArchived = true
)

// GroupsFile is the report layout: which org to scan, filtering options and
// named groups of repositories. Repositories not in any group are reported
// under "Others".
type GroupsFile struct {
	Org          string
	IncludeBots  bool
	SkipForks    bool
	SkipArchived bool
	Groups       map[string][]string
}

type groupsYAML struct {
	Org     string `yaml:"org"`
	Options struct {
		IncludeBots  *bool `yaml:"include_bots"`
		SkipForks    *bool `yaml:"skip_forks"`
		SkipArchived *bool `yaml:"skip_archived"`
	} `yaml:"options"`
	Groups map[string]yaml.Node `yaml:"groups"`
}

func DefaultGroups() *GroupsFile {
	return &GroupsFile{
		Org:          DefaultOrg,
		IncludeBots:  DefaultIncludeBots,
		SkipForks:    DefaultSkipForks,
		SkipArchived: DefaultSkipArchived,
		Groups:       map[string][]string{},
	}
}

// LoadGroups reads a groups file. A missing file yields the defaults.
func LoadGroups(path string) (*GroupsFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return DefaultGroups(), nil
		}
		return nil, fmt.Errorf("read groups file %s: %w", path, err)
	}
	groups, err := ParseGroups(data)
	if err != nil {
		return nil, fmt.Errorf("parse groups file %s: %w", path, err)
	}
	return groups, nil
}

// ParseGroups decodes a groups document. Groups whose value is not a list are
// ignored and blank entries are dropped.
func ParseGroups(data []byte) (*GroupsFile, error) {
	var raw groupsYAML
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	out := DefaultGroups()
	if org := strings.TrimSpace(raw.Org); org != "" {
		out.Org = org
	}
	if raw.Options.IncludeBots != nil {
		out.IncludeBots = *raw.Options.IncludeBots
	}
	if raw.Options.SkipForks != nil {
		out.SkipForks = *raw.Options.SkipForks
	}
	if raw.Options.SkipArchived != nil {
		out.SkipArchived = *raw.Options.SkipArchived
	}

	for name, node := range raw.Groups {
		if node.Kind != yaml.SequenceNode {
			continue
		}
		repos := []string{}
		for _, item := range node.Content {
			if item.Kind != yaml.ScalarNode {
				continue
			}
			if repo := strings.TrimSpace(item.Value); repo != "" {
				repos = append(repos, repo)
			}
		}
		out.Groups[name] = repos
	}
	return out, nil
}
