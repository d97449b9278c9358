// Package roster loads the team member registry from a YAML file. Members
// are configuration: loaded once at startup, immutable afterwards.
package roster

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"roster/internal/catalog"
	"roster/internal/log"
)

// Member is one addressable team agent.
type Member struct {
	// ID is the stable identifier used for sessions and message history.
	ID string `yaml:"id"`
	// Name is the primary display name.
	Name string `yaml:"name"`
	// Nickname, when set, is preferred for mention insertion.
	Nickname string `yaml:"nickname,omitempty"`
	// Model is the member's default model (catalog id). Empty uses the
	// host default.
	Model string `yaml:"model,omitempty"`
	// Icon names an entry of the member icon set.
	Icon string `yaml:"icon,omitempty"`
	// DefaultTask describes the member's standing task. It becomes the
	// agent's description when a run starts.
	DefaultTask string `yaml:"default_task,omitempty"`
	// SystemPrompt optionally extends the agent's system prompt.
	SystemPrompt string `yaml:"system_prompt,omitempty"`
}

// DisplayName returns the nickname when present, else the name.
func (m Member) DisplayName() string {
	if m.Nickname != "" {
		return m.Nickname
	}
	return m.Name
}

// Roster is the loaded, validated member registry.
type Roster struct {
	members []Member
	byID    map[string]Member
}

type fileFormat struct {
	Members []Member `yaml:"members"`
}

// Load reads and validates a roster file.
func Load(path string) (*Roster, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from config
	if err != nil {
		return nil, fmt.Errorf("failed to read roster file: %w", err)
	}
	r, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("invalid roster file %s: %w", path, err)
	}
	log.Info(log.CatRoster, "roster loaded", "path", path, "members", len(r.members))
	return r, nil
}

// Parse decodes and validates roster YAML.
func Parse(data []byte) (*Roster, error) {
	var f fileFormat
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse roster yaml: %w", err)
	}

	byID := make(map[string]Member, len(f.Members))
	for i, m := range f.Members {
		if m.ID == "" {
			return nil, fmt.Errorf("member %d: missing id", i)
		}
		if m.Name == "" {
			return nil, fmt.Errorf("member %s: missing name", m.ID)
		}
		if _, dup := byID[m.ID]; dup {
			return nil, fmt.Errorf("duplicate member id %s", m.ID)
		}
		if m.Model != "" {
			if _, ok := catalog.ModelByID(m.Model); !ok {
				return nil, fmt.Errorf("member %s: unknown model %q", m.ID, m.Model)
			}
		}
		if m.Icon != "" && !catalog.ValidMemberIcon(m.Icon) {
			return nil, fmt.Errorf("member %s: unknown icon %q", m.ID, m.Icon)
		}
		byID[m.ID] = m
	}

	return &Roster{members: f.Members, byID: byID}, nil
}

// Members returns the members in file order.
func (r *Roster) Members() []Member {
	out := make([]Member, len(r.members))
	copy(out, r.members)
	return out
}

// ByID looks up a member.
func (r *Roster) ByID(id string) (Member, bool) {
	m, ok := r.byID[id]
	return m, ok
}

// Len returns the member count.
func (r *Roster) Len() int { return len(r.members) }

// Match returns members whose name or nickname starts with the query,
// case-sensitive, in file order. An empty query matches everyone.
func (r *Roster) Match(query string) []Member {
	if query == "" {
		return r.Members()
	}
	var out []Member
	for _, m := range r.members {
		if hasPrefix(m.Name, query) || hasPrefix(m.Nickname, query) {
			out = append(out, m)
		}
	}
	return out
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}
