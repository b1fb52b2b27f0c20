// Package sources loads named crawl profiles from a YAML file. A profile
// bundles seed URLs with crawl overrides so recurring corpora can be rebuilt
// without repeating flags.
package sources

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/contextkit/corpora/internal/domain"
)

// ErrProfileNotFound is returned when a named profile is absent.
var ErrProfileNotFound = errors.New("profile not found")

// Profile is one named crawl definition. Delay uses Go duration syntax,
// e.g. "250ms".
type Profile struct {
	Name             string   `yaml:"name"`
	Seeds            []string `yaml:"seeds"`
	TargetTokens     *int     `yaml:"target_tokens,omitempty"`
	MinTokensPerPage *int     `yaml:"min_tokens_per_page,omitempty"`
	MaxPages         *int     `yaml:"max_pages,omitempty"`
	MaxSubrequests   *int     `yaml:"max_subrequests,omitempty"`
	SameDomainOnly   *bool    `yaml:"same_domain_only,omitempty"`
	RespectRobotsTxt *bool    `yaml:"respect_robots_txt,omitempty"`
	Delay            string   `yaml:"delay,omitempty"`

	delay time.Duration
}

// DelayDuration returns the parsed politeness delay, zero when unset.
func (p *Profile) DelayDuration() time.Duration {
	return p.delay
}

// CrawlConfig builds a crawl configuration from the profile, starting from
// defaults and applying only the overrides the profile sets.
func (p *Profile) CrawlConfig() *domain.CrawlConfig {
	cfg := domain.NewCrawlConfig(p.Seeds...)

	if p.TargetTokens != nil {
		cfg.TargetTokens = *p.TargetTokens
	}

	if p.MinTokensPerPage != nil {
		cfg.MinTokensPerPage = *p.MinTokensPerPage
	}

	if p.MaxPages != nil {
		cfg.MaxPages = *p.MaxPages
	}

	if p.MaxSubrequests != nil {
		cfg.MaxSubrequests = *p.MaxSubrequests
	}

	if p.SameDomainOnly != nil {
		cfg.SameDomainOnly = *p.SameDomainOnly
	}

	if p.RespectRobotsTxt != nil {
		cfg.RespectRobotsTxt = *p.RespectRobotsTxt
	}

	if p.delay > 0 {
		cfg.Delay = p.delay
	}

	return &cfg
}

type profileFile struct {
	Profiles []Profile `yaml:"profiles"`
}

// Registry holds the loaded profiles.
type Registry struct {
	profiles map[string]Profile
	order    []string
}

// Load reads profiles from a YAML file at path.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profiles: %w", err)
	}

	return Parse(data)
}

// Parse decodes profiles from YAML bytes.
func Parse(data []byte) (*Registry, error) {
	var file profileFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse profiles: %w", err)
	}

	registry := &Registry{profiles: make(map[string]Profile, len(file.Profiles))}

	for _, profile := range file.Profiles {
		if profile.Name == "" {
			return nil, errors.New("profile is missing a name")
		}

		if len(profile.Seeds) == 0 {
			return nil, fmt.Errorf("profile %q has no seeds", profile.Name)
		}

		if _, exists := registry.profiles[profile.Name]; exists {
			return nil, fmt.Errorf("duplicate profile %q", profile.Name)
		}

		if profile.Delay != "" {
			delay, err := time.ParseDuration(profile.Delay)
			if err != nil {
				return nil, fmt.Errorf("profile %q: invalid delay: %w", profile.Name, err)
			}

			profile.delay = delay
		}

		registry.profiles[profile.Name] = profile
		registry.order = append(registry.order, profile.Name)
	}

	return registry, nil
}

// Get returns a profile by name.
func (r *Registry) Get(name string) (*Profile, error) {
	profile, ok := r.profiles[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrProfileNotFound, name)
	}

	return &profile, nil
}

// Names lists profile names in file order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.order))
	copy(names, r.order)

	return names
}
