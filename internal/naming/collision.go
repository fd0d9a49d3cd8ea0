package naming

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNameCollision is returned under CollisionError when two artifacts share a name
var ErrNameCollision = errors.New("output name collision")

// CollisionPolicy decides how duplicate names inside one bundle are handled
type CollisionPolicy string

const (
	// CollisionOverwrite keeps one entry per name; the later input in selection order wins
	CollisionOverwrite CollisionPolicy = "overwrite"

	// CollisionSuffix renames later duplicates to "name (2).ext", "name (3).ext", ...
	CollisionSuffix CollisionPolicy = "suffix"

	// CollisionError fails the whole bundle
	CollisionError CollisionPolicy = "error"
)

// DefaultCollisionPolicy matches what a browser zip of same-named entries did
const DefaultCollisionPolicy = CollisionOverwrite

// ParseCollisionPolicy maps a setting value to a policy
func ParseCollisionPolicy(s string) (CollisionPolicy, error) {
	switch CollisionPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return DefaultCollisionPolicy, nil
	case CollisionOverwrite:
		return CollisionOverwrite, nil
	case CollisionSuffix:
		return CollisionSuffix, nil
	case CollisionError:
		return CollisionError, nil
	default:
		return "", fmt.Errorf("unknown collision policy: %q", s)
	}
}

// CollisionPolicies lists the accepted policies in display order
func CollisionPolicies() []CollisionPolicy {
	return []CollisionPolicy{CollisionOverwrite, CollisionSuffix, CollisionError}
}

// Resolve takes output names in selection order and returns, for each position,
// the name it is stored under, or "" when the entry is dropped because a later
// entry overwrites it. Resolution depends only on order, never on timing.
func Resolve(names []string, policy CollisionPolicy) ([]string, error) {
	resolved := make([]string, len(names))

	switch policy {
	case CollisionOverwrite, "":
		last := make(map[string]int, len(names))
		for i, name := range names {
			last[name] = i
		}
		for i, name := range names {
			if last[name] == i {
				resolved[i] = name
			}
		}
		return resolved, nil

	case CollisionSuffix:
		taken := make(map[string]bool, len(names))
		for _, name := range names {
			taken[name] = false
		}
		counters := make(map[string]int)
		for i, name := range names {
			if !taken[name] {
				taken[name] = true
				resolved[i] = name
				continue
			}
			stem, ext := SplitExt(name)
			counter := counters[name]
			if counter == 0 {
				counter = 2
			}
			for {
				candidate := fmt.Sprintf("%s (%d)%s", stem, counter, ext)
				if used, exists := taken[candidate]; !exists || !used {
					if !exists {
						taken[candidate] = true
					} else {
						// candidate is an original name appearing later; skip it
						counter++
						continue
					}
					counters[name] = counter + 1
					resolved[i] = candidate
					break
				}
				counter++
			}
		}
		return resolved, nil

	case CollisionError:
		seen := make(map[string]bool, len(names))
		for i, name := range names {
			if seen[name] {
				return nil, fmt.Errorf("%w: %s", ErrNameCollision, name)
			}
			seen[name] = true
			resolved[i] = name
		}
		return resolved, nil

	default:
		return nil, fmt.Errorf("unknown collision policy: %q", policy)
	}
}
