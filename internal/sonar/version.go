package sonar

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// Editions of the SonarQube platform
const (
	EditionCommunity  = "community"
	EditionDeveloper  = "developer"
	EditionEnterprise = "enterprise"
	EditionDataCenter = "datacenter"
)

// Version is a SonarQube server version
type Version struct {
	Major int
	Minor int
	Patch int
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// LessThan compares two versions
func (v Version) LessThan(other Version) bool {
	if v.Major != other.Major {
		return v.Major < other.Major
	}
	if v.Minor != other.Minor {
		return v.Minor < other.Minor
	}
	return v.Patch < other.Patch
}

// ParseVersion parses the api/server/version payload. Build numbers beyond
// the patch component are ignored.
func ParseVersion(s string) (Version, error) {
	parts := strings.Split(strings.TrimSpace(s), ".")
	if len(parts) < 2 {
		return Version{}, fmt.Errorf("cannot parse server version %q", s)
	}
	var nums [3]int
	for i := 0; i < 3 && i < len(parts); i++ {
		n, err := strconv.Atoi(parts[i])
		if err != nil {
			return Version{}, fmt.Errorf("cannot parse server version %q: %w", s, err)
		}
		nums[i] = n
	}
	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil
}

// Version returns the server version, fetching and caching it on first use
func (c *Client) Version(ctx context.Context) (Version, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.version != nil {
		return *c.version, nil
	}
	text, err := c.GetText(ctx, "server/version", nil)
	if err != nil {
		return Version{}, err
	}
	v, err := ParseVersion(text)
	if err != nil {
		return Version{}, err
	}
	c.version = &v
	return v, nil
}

// Edition returns the server edition (community, developer, enterprise,
// datacenter), fetching and caching it on first use
func (c *Client) Edition(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.edition != "" {
		return c.edition, nil
	}
	var payload struct {
		Edition string `json:"edition"`
	}
	if err := c.Get(ctx, "navigation/global", nil, &payload); err != nil {
		return "", err
	}
	c.edition = strings.ToLower(payload.Edition)
	return c.edition, nil
}
