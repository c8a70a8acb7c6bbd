// Package importer pulls external backlogs into the workflow.
package importer

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/go-github/v69/github"
	"golang.org/x/oauth2"

	"github.com/felixgeelhaar/forgeflow/internal/domain/workflow"
)

// GitHubImporter converts open issues of a repository into pending nodes.
type GitHubImporter struct {
	client *github.Client
}

// NewGitHubImporter creates an importer. An empty token falls back to
// unauthenticated access, which is enough for public repositories.
func NewGitHubImporter(ctx context.Context, token string) *GitHubImporter {
	if token == "" {
		return &GitHubImporter{client: github.NewClient(nil)}
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	return &GitHubImporter{client: github.NewClient(oauth2.NewClient(ctx, ts))}
}

// FetchIssues lists open issues and maps them to tasks. Pull requests are
// skipped; issue numbers become provisional ids so cross-references inside
// the same import survive the id rewrite.
func (i *GitHubImporter) FetchIssues(ctx context.Context, owner, repo string, limit int) ([]workflow.Task, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	issues, _, err := i.client.Issues.ListByRepo(ctx, owner, repo, &github.IssueListByRepoOptions{
		State:       "open",
		ListOptions: github.ListOptions{PerPage: limit},
	})
	if err != nil {
		return nil, fmt.Errorf("list issues for %s/%s: %w", owner, repo, err)
	}

	var tasks []workflow.Task
	for _, issue := range issues {
		if issue.IsPullRequest() {
			continue
		}

		owner := "GitHub_Import"
		if issue.Assignee != nil && issue.Assignee.GetLogin() != "" {
			owner = issue.Assignee.GetLogin()
		}

		tasks = append(tasks, workflow.Task{
			ID:          fmt.Sprintf("gh-%d", issue.GetNumber()),
			Title:       issue.GetTitle(),
			Description: issue.GetBody(),
			Status:      workflow.StatusPending,
			Priority:    priorityFromLabels(issue.Labels),
			Owner:       owner,
			Subtasks:    []workflow.SubTask{},
		})
	}
	return tasks, nil
}

// priorityFromLabels maps common priority labels onto the three levels.
func priorityFromLabels(labels []*github.Label) workflow.Priority {
	for _, l := range labels {
		name := strings.ToLower(l.GetName())
		switch {
		case strings.Contains(name, "critical"), strings.Contains(name, "urgent"), strings.Contains(name, "high"):
			return workflow.PriorityHigh
		case strings.Contains(name, "low"), strings.Contains(name, "minor"):
			return workflow.PriorityLow
		}
	}
	return workflow.PriorityMedium
}
