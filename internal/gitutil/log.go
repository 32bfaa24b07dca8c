// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package gitutil

import (
	"context"
	"strconv"
	"strings"
	"time"
)

// logFieldSep is unlikely to appear in commit subjects.
const logFieldSep = "\x1f"

// Commit is one parsed log entry with the files it touched.
type Commit struct {
	Hash    string
	Author  string
	Date    time.Time
	Subject string
	Files   []string
}

// LogSince returns the commits newer than since (a git-understood date
// like "6 months ago" or an ISO date), newest first, restricted to
// pathspec when non-empty. Each commit carries the files it touched.
func (g *Git) LogSince(ctx context.Context, since, pathspec string) ([]Commit, error) {
	args := []string{
		"log", "--since=" + since, "--name-only",
		"--pretty=format:" + strings.Join([]string{"%H", "%an", "%aI", "%s"}, logFieldSep),
	}
	if pathspec != "" {
		args = append(args, "--", pathspec)
	}

	out, err := g.exec.Output(ctx, g.dir, args...)
	if err != nil {
		return nil, err
	}
	return parseLog(out), nil
}

func parseLog(out string) []Commit {
	var commits []Commit
	var cur *Commit

	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, logFieldSep) {
			parts := strings.SplitN(line, logFieldSep, 4)
			if len(parts) != 4 {
				continue
			}
			date, _ := time.Parse(time.RFC3339, parts[2])
			commits = append(commits, Commit{
				Hash:    parts[0],
				Author:  parts[1],
				Date:    date,
				Subject: parts[3],
			})
			cur = &commits[len(commits)-1]
			continue
		}
		line = strings.TrimSpace(line)
		if line != "" && cur != nil {
			cur.Files = append(cur.Files, line)
		}
	}
	return commits
}

// Churn aggregates line changes for one file.
type Churn struct {
	Added   int
	Deleted int
	Commits int
}

// NumstatSince aggregates per-file line churn for commits newer than
// since, restricted to pathspec when non-empty. Binary entries ("-")
// count the commit but no lines.
func (g *Git) NumstatSince(ctx context.Context, since, pathspec string) (map[string]Churn, error) {
	args := []string{"log", "--since=" + since, "--numstat", "--pretty=format:"}
	if pathspec != "" {
		args = append(args, "--", pathspec)
	}

	out, err := g.exec.Output(ctx, g.dir, args...)
	if err != nil {
		return nil, err
	}

	churn := make(map[string]Churn)
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) != 3 {
			continue
		}
		added, _ := strconv.Atoi(fields[0])
		deleted, _ := strconv.Atoi(fields[1])

		c := churn[fields[2]]
		c.Added += added
		c.Deleted += deleted
		c.Commits++
		churn[fields[2]] = c
	}
	return churn, nil
}
