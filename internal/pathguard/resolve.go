// resolve.go maps symbolic location ids to canonical base directories.
//
// Resolution re-reads filesystem state on every call: directories may be
// created, removed, or retargeted between requests, and a cached result
// would reintroduce exactly the stale-state problems the final boundary
// check exists to catch. Home-directory shorthand in configured paths is
// expanded here, not at config load, so a shared config file stays portable
// across machines.

package pathguard

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ResolveBase resolves a location id to an existing, writable, canonical
// base directory. The directory is created with 0o755 if absent; concurrent
// creation by another request is benign (already-exists is success).
//
// An empty locationID fails with ErrLocationRequired when the policy
// enforces location restrictions; otherwise the "default" location is used
// if configured.
func ResolveBase(locationID string, table Locations, policy Policy) (string, error) {
	if locationID == "" {
		if policy.EnforceLocationRestrictions {
			return "", fmt.Errorf("%w: request did not name a location (available: %s)",
				ErrLocationRequired, strings.Join(locationIDs(table), ", "))
		}
		locationID = DefaultLocation
	}

	configured, ok := table[locationID]
	if !ok {
		// List ids only - configured paths of other locations are not the
		// caller's business.
		return "", fmt.Errorf("%w: %q (available: %s)",
			ErrUnknownLocation, locationID, strings.Join(locationIDs(table), ", "))
	}

	base, err := ExpandHome(configured)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrLocationNotWritable, locationID, err)
	}
	base, err = filepath.Abs(base)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrLocationNotWritable, locationID, err)
	}

	if err := os.MkdirAll(base, 0o755); err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrLocationNotWritable, locationID, err)
	}

	info, err := os.Stat(base)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrLocationNotWritable, locationID, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %q is not a directory", ErrLocationNotWritable, locationID)
	}

	if err := checkWritable(base); err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrLocationNotWritable, locationID, err)
	}

	canon, err := filepath.EvalSymlinks(base)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrLocationNotWritable, locationID, err)
	}
	return canon, nil
}

// ExpandHome expands a leading ~ or ~/ in p to the current user's home
// directory. Paths without the shorthand are returned unchanged.
func ExpandHome(p string) (string, error) {
	if p != "~" && !strings.HasPrefix(p, "~/") && !strings.HasPrefix(p, `~\`) {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	if p == "~" {
		return home, nil
	}
	return filepath.Join(home, p[2:]), nil
}

// checkWritable verifies the process can create files in dir by creating and
// removing a probe file. Checking mode bits alone misses read-only mounts
// and ACLs.
func checkWritable(dir string) error {
	f, err := os.CreateTemp(dir, ".vgrab-probe-*")
	if err != nil {
		return err
	}
	name := f.Name()
	if err := f.Close(); err != nil {
		os.Remove(name)
		return err
	}
	return os.Remove(name)
}

// locationIDs returns the configured location ids in sorted order.
func locationIDs(table Locations) []string {
	ids := make([]string, 0, len(table))
	for id := range table {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
