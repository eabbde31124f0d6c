package updatechecker

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/virel-project/virel-social/config"
	"github.com/virel-project/virel-social/logger"
)

// Status represents the update check result
type Status int

const (
	StatusUpToDate Status = iota
	StatusPatchUpdate
	StatusMinorUpdate
	StatusMajorUpdate
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusUpToDate:
		return "up to date"
	case StatusPatchUpdate:
		return "patch"
	case StatusMinorUpdate:
		return "minor"
	case StatusMajorUpdate:
		return "major"
	}
	return "error"
}

type Version struct {
	Major, Minor, Patch int
}

func (v Version) String() string {
	return strconv.Itoa(v.Major) + "." + strconv.Itoa(v.Minor) + "." + strconv.Itoa(v.Patch)
}

var Current = Version{config.VERSION_MAJOR, config.VERSION_MINOR, config.VERSION_PATCH}

// RunUpdateChecker logs whether a release newer than the running binary exists.
func RunUpdateChecker(ctx context.Context, log *logger.Log, url string) {
	log.Info("Checking for updates")
	status, version, err := CheckForUpdate(ctx, url, Current)
	if err != nil || status == StatusError {
		log.Warn("Error checking for updates:", err)
		return
	}

	if status == StatusUpToDate {
		log.Infof("%s is up to date (v%v)", config.NAME, Current)
		return
	}
	log.Infof("There's a new %s update available: You are on v%v, version v%v", status, Current, version)
}

type githubReleaseInfo struct {
	TagName string `json:"tag_name"`
}

// CheckForUpdate fetches the latest release tag from url and compares it with cur.
func CheckForUpdate(ctx context.Context, url string, cur Version) (Status, Version, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return StatusError, Version{}, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return StatusError, Version{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return StatusError, Version{}, errors.Errorf("HTTP status %d", resp.StatusCode)
	}

	ghr := githubReleaseInfo{}
	err = json.NewDecoder(resp.Body).Decode(&ghr)
	if err != nil {
		return StatusError, Version{}, errors.Wrap(err, "invalid release info")
	}

	remote, err := ParseVersion(ghr.TagName)
	if err != nil {
		return StatusError, Version{}, err
	}
	return Compare(cur, remote), remote, nil
}

// ParseVersion parses tags like "v1.2.3" or "1.2.3-beta".
func ParseVersion(tag string) (Version, error) {
	s := strings.TrimSpace(strings.Split(strings.TrimPrefix(tag, "v"), "-")[0])
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return Version{}, errors.Errorf("invalid version format: %s", tag)
	}
	var nums [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return Version{}, errors.Wrapf(err, "invalid version format: %s", tag)
		}
		nums[i] = n
	}
	return Version{nums[0], nums[1], nums[2]}, nil
}

// Compare reports which kind of update remote is relative to cur.
func Compare(cur, remote Version) Status {
	switch {
	case remote.Major > cur.Major:
		return StatusMajorUpdate
	case remote.Major == cur.Major && remote.Minor > cur.Minor:
		return StatusMinorUpdate
	case remote.Major == cur.Major && remote.Minor == cur.Minor && remote.Patch > cur.Patch:
		return StatusPatchUpdate
	}
	return StatusUpToDate
}
