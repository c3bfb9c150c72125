package github

import (
	"context"
	"fmt"

	gh "github.com/google/go-github/v82/github"

	"github.com/ericfisherdev/threadsweep/internal/domain/model"
)

// GetPullRequestDetail fetches the state, author, review requests and
// assignees of a single pull request.
func (c *Client) GetPullRequestDetail(ctx context.Context, owner, repo string, number int) (*model.PullRequestDetail, error) {
	pr, resp, err := c.gh.PullRequests.Get(ctx, owner, repo, number)
	if err != nil {
		return nil, fmt.Errorf("fetching PR detail for %s/%s#%d: %w", owner, repo, number, err)
	}

	logRateLimit(resp, owner+"/"+repo+"/pr-detail", 0, 1)

	detail := mapPullRequestDetail(pr)
	return &detail, nil
}

// mapPullRequestDetail converts a go-github PullRequest to a domain model PullRequestDetail.
func mapPullRequestDetail(pr *gh.PullRequest) model.PullRequestDetail {
	teams := make([]model.TeamRef, 0, len(pr.RequestedTeams))
	for _, t := range pr.RequestedTeams {
		teams = append(teams, model.TeamRef{Name: t.GetName(), Slug: t.GetSlug()})
	}

	return model.PullRequestDetail{
		Number:             pr.GetNumber(),
		State:              model.PRState(pr.GetState()),
		Merged:             pr.GetMerged() || !pr.GetMergedAt().IsZero(),
		Author:             mapAccount(pr.GetUser()),
		RequestedReviewers: mapAccounts(pr.RequestedReviewers),
		RequestedTeams:     teams,
		Assignees:          mapAccounts(pr.Assignees),
	}
}

func mapAccount(u *gh.User) model.Account {
	return model.Account{Login: u.GetLogin(), Type: u.GetType()}
}

func mapAccounts(users []*gh.User) []model.Account {
	accounts := make([]model.Account, 0, len(users))
	for _, u := range users {
		accounts = append(accounts, mapAccount(u))
	}
	return accounts
}
