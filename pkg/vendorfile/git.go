package vendorfile

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"sort"

	"github.com/Masterminds/semver/v3"
	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/storage/memory"
	"github.com/rotisserie/eris"

	"wheelhouse/pkg/console"
)

var githubURLPattern = regexp.MustCompile(`^https://github\.com/(.+?)/(.+?)(?:\.git)?$`)

// injectToken rewrites github.com clone URLs to carry the access token.
// Other URLs are returned unchanged.
func injectToken(url, token string) string {
	if token == "" {
		return url
	}

	match := githubURLPattern.FindStringSubmatch(url)
	if match == nil {
		return url
	}

	return fmt.Sprintf("https://%s@github.com/%s/%s.git", token, match[1], match[2])
}

func (s *Syncer) syncGit(ctx context.Context, name string, entry Entry, target string) (bool, error) {
	version, err := s.resolveVersion(ctx, entry)
	if err != nil {
		return false, err
	}

	// Skip checkouts that already carry the requested tag. Branches are
	// never skipped since they can move.
	if version != "" && hasVersionTag(target, version) {
		console.PrintSubtask(fmt.Sprintf("%s: already at %s", name, version))
		return false, nil
	}

	console.PrintSubtask(fmt.Sprintf("Fetching %s (%s)", name, entry.Source))
	err = os.RemoveAll(target)
	if err != nil {
		return false, eris.Wrapf(err, "Failed to remove %s", target)
	}

	err = cloneAt(ctx, injectToken(entry.Source, s.Token), target, version)
	if err != nil {
		return false, err
	}

	return true, nil
}

// cloneAt performs a shallow single-branch clone. The version can be a tag, a
// branch or empty for the remote's default branch; tags are tried first.
func cloneAt(ctx context.Context, url, target, version string) error {
	var refs []plumbing.ReferenceName
	if version == "" {
		refs = []plumbing.ReferenceName{""}
	} else {
		refs = []plumbing.ReferenceName{
			plumbing.NewTagReferenceName(version),
			plumbing.NewBranchReferenceName(version),
		}
	}

	var err error
	for _, ref := range refs {
		opts := &git.CloneOptions{
			URL:          url,
			Depth:        1,
			SingleBranch: true,
		}
		if ref != "" {
			opts.ReferenceName = ref
		}

		_, err = git.PlainCloneContext(ctx, target, false, opts)
		if err == nil {
			return nil
		}

		// clean up the partial clone before the next attempt
		os.RemoveAll(target)
	}

	return eris.Wrapf(err, "Failed to clone %s at %s", url, version)
}

// hasVersionTag reports whether the checkout at path exists and its HEAD
// carries the given tag. Annotated tags are resolved to their commit.
func hasVersionTag(path, version string) bool {
	repo, err := git.PlainOpen(path)
	if err != nil {
		return false
	}

	head, err := repo.Head()
	if err != nil {
		return false
	}

	tags, err := repo.Tags()
	if err != nil {
		return false
	}
	defer tags.Close()

	found := false
	_ = tags.ForEach(func(ref *plumbing.Reference) error {
		if ref.Name().Short() != version {
			return nil
		}

		hash := ref.Hash()
		if tagObj, err := repo.TagObject(hash); err == nil {
			hash = tagObj.Target
		}

		if hash == head.Hash() {
			found = true
		}
		return nil
	})

	return found
}

// resolveVersion turns the manifest version into a concrete git ref name. An
// exact version or a plain branch name is returned as-is; a semver
// constraint is resolved against the remote's tags.
func (s *Syncer) resolveVersion(ctx context.Context, entry Entry) (string, error) {
	if entry.Version == "" {
		return "", nil
	}

	if _, err := semver.StrictNewVersion(trimTagPrefix(entry.Version)); err == nil {
		return entry.Version, nil
	}

	constraint, err := semver.NewConstraint(entry.Version)
	if err != nil {
		// not a constraint, assume it's a branch name
		return entry.Version, nil
	}

	tags, err := s.remoteVersions(ctx, entry.Source)
	if err != nil {
		return "", err
	}

	return pickVersion(tags, constraint)
}

func trimTagPrefix(tag string) string {
	if len(tag) > 1 && tag[0] == 'v' {
		return tag[1:]
	}
	return tag
}

func (s *Syncer) remoteVersions(ctx context.Context, url string) ([]string, error) {
	remote := git.NewRemote(memory.NewStorage(), &gitconfig.RemoteConfig{
		Name: "origin",
		URLs: []string{injectToken(url, s.Token)},
	})

	refs, err := remote.ListContext(ctx, &git.ListOptions{})
	if err != nil {
		return nil, eris.Wrapf(err, "Failed to list refs of %s", url)
	}

	tags := make([]string, 0, len(refs))
	for _, ref := range refs {
		if ref.Name().IsTag() {
			tags = append(tags, ref.Name().Short())
		}
	}

	return tags, nil
}

// pickVersion returns the highest tag that satisfies the constraint. Tags
// that aren't valid versions are ignored.
func pickVersion(tags []string, constraint *semver.Constraints) (string, error) {
	parsed := make(semver.Collection, 0, len(tags))
	byVersion := make(map[string]string, len(tags))

	for _, tag := range tags {
		ver, err := semver.StrictNewVersion(trimTagPrefix(tag))
		if err != nil {
			continue
		}

		parsed = append(parsed, ver)
		byVersion[ver.String()] = tag
	}

	sort.Sort(parsed)
	for idx := len(parsed) - 1; idx >= 0; idx-- {
		if constraint.Check(parsed[idx]) {
			return byVersion[parsed[idx].String()], nil
		}
	}

	return "", eris.Errorf("no tag matches %s", constraint)
}
