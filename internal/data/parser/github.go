package parser

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/penwyp/go-storyteller/internal/core/model"
	"github.com/penwyp/go-storyteller/internal/util"
)

// gitLogTimeout bounds a single git log invocation.
const gitLogTimeout = 30 * time.Second

// commitSeparator closes each record of the git log format string.
const commitSeparator = "---END---"

// GithubParser reads commit history from a local repository. One event
// per non-merge commit, timestamped at the authored time so rebases
// and merges do not distort the timeline.
type GithubParser struct{}

func (p *GithubParser) SourceType() model.SourceType {
	return model.SourceGithub
}

func (p *GithubParser) Parse(artifact string, now time.Time) ([]model.Event, error) {
	if _, err := os.Stat(filepath.Join(artifact, ".git")); err != nil {
		return nil, fmt.Errorf("%s is not a git repository", artifact)
	}

	ctx, cancel := context.WithTimeout(context.Background(), gitLogTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", "-C", artifact, "log",
		"--format=%H%n%aI%n%an%n%s%n%b%n"+commitSeparator,
		"--no-merges")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("git log in %s: %w (%s)", artifact, err, strings.TrimSpace(stderr.String()))
	}

	repo := filepath.Base(artifact)
	var events []model.Event

	for _, entry := range strings.Split(stdout.String(), commitSeparator) {
		lines := strings.Split(strings.TrimSpace(entry), "\n")
		if len(lines) < 4 {
			continue
		}

		hash := strings.TrimSpace(lines[0])
		timestamp, err := util.ParseTimestamp(lines[1])
		if err != nil {
			util.LogDebug(fmt.Sprintf("Skip commit %s: bad author date %q", hash, lines[1]))
			continue
		}
		author := strings.TrimSpace(lines[2])
		subject := strings.TrimSpace(lines[3])
		body := strings.TrimSpace(strings.Join(lines[4:], "\n"))

		summary := body
		if summary == "" {
			summary = subject
		}

		events = append(events, model.Event{
			Timestamp:  model.NewTimestamp(timestamp),
			SourceType: model.SourceGithub,
			Title:      subject,
			Summary:    summary,
			Metadata: map[string]string{
				"repo":   repo,
				"commit": hash,
				"author": author,
			},
		})
	}

	return events, nil
}
