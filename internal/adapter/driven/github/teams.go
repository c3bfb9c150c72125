package github

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	gh "github.com/google/go-github/v82/github"

	"github.com/ericfisherdev/threadsweep/internal/domain/model"
	"github.com/ericfisherdev/threadsweep/internal/domain/port/driven"
)

// graphqlHTTPClient is the HTTP client used for GraphQL requests.
// It enforces a 30-second timeout as a safety net alongside context cancellation.
var graphqlHTTPClient = &http.Client{Timeout: 30 * time.Second}

// errGraphQL marks an error reported inside a GraphQL response body.
var errGraphQL = errors.New("graphql error")

const orgTeamsQuery = `query($org: String!, $login: String!, $cursor: String) {
	organization(login: $org) {
		teams(first: 100, userLogins: [$login], after: $cursor) {
			pageInfo {
				hasNextPage
				endCursor
			}
			nodes {
				databaseId
				name
				slug
			}
		}
	}
}`

// graphqlRequest is the JSON body sent to the GitHub GraphQL API.
type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

// orgTeamsResponse represents the expected shape of the organization teams query.
type orgTeamsResponse struct {
	Data struct {
		Organization struct {
			Teams struct {
				PageInfo struct {
					HasNextPage bool   `json:"hasNextPage"`
					EndCursor   string `json:"endCursor"`
				} `json:"pageInfo"`
				Nodes []struct {
					DatabaseID int64  `json:"databaseId"`
					Name       string `json:"name"`
					Slug       string `json:"slug"`
				} `json:"nodes"`
			} `json:"teams"`
		} `json:"organization"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// ListTeamsForUser discovers the organizations of the authenticated user and,
// for each, the teams username belongs to. An organization whose teams cannot
// be read (SSO enforcement, missing scope) is skipped with a warning. Failing
// to list organizations, or failing for every organization, is an error.
func (c *Client) ListTeamsForUser(ctx context.Context, username string) ([]model.Team, error) {
	orgs, err := c.listOrganizations(ctx)
	if err != nil {
		return nil, err
	}

	teams := []model.Team{}
	var failed int
	var lastErr error
	for _, org := range orgs {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		orgTeams, err := c.listOrgTeamsForUser(ctx, org, username)
		if err != nil {
			slog.Warn("skipping organization teams", "org", org, "username", username, "error", err)
			failed++
			lastErr = err
			continue
		}
		teams = append(teams, orgTeams...)
	}

	if len(orgs) > 0 && failed == len(orgs) {
		return nil, fmt.Errorf("listing teams of %s in %d organizations: %w (last error: %v)",
			username, len(orgs), driven.ErrTeamsUnavailable, lastErr)
	}

	slog.Debug("teams resolved", "username", username, "orgs", len(orgs), "teams", len(teams))

	return teams, nil
}

// listOrganizations returns the logins of every organization the authenticated
// user belongs to. It handles pagination automatically.
func (c *Client) listOrganizations(ctx context.Context) ([]string, error) {
	opts := &gh.ListOptions{PerPage: pageSize}
	var logins []string

	for {
		orgs, resp, err := c.gh.Organizations.List(ctx, "", opts)
		if err != nil {
			return nil, fmt.Errorf("listing organizations (page %d): %w", opts.Page, err)
		}

		logRateLimit(resp, "user/orgs", opts.Page, len(orgs))

		for _, o := range orgs {
			logins = append(logins, o.GetLogin())
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return logins, nil
}

// listOrgTeamsForUser pages through the GraphQL teams connection of org,
// filtered to teams that username is a member of.
func (c *Client) listOrgTeamsForUser(ctx context.Context, org, username string) ([]model.Team, error) {
	var teams []model.Team
	var cursor *string

	for {
		var gqlResp orgTeamsResponse
		err := c.graphql(ctx, graphqlRequest{
			Query: orgTeamsQuery,
			Variables: map[string]any{
				"org":    org,
				"login":  username,
				"cursor": cursor,
			},
		}, &gqlResp)
		if err != nil {
			return nil, err
		}

		if len(gqlResp.Errors) > 0 {
			return nil, fmt.Errorf("teams of %s: %w: %s", org, errGraphQL, gqlResp.Errors[0].Message)
		}

		conn := gqlResp.Data.Organization.Teams
		for _, n := range conn.Nodes {
			teams = append(teams, model.Team{
				ID:           n.DatabaseID,
				Name:         n.Name,
				Slug:         n.Slug,
				Organization: org,
			})
		}

		if !conn.PageInfo.HasNextPage || conn.PageInfo.EndCursor == "" {
			break
		}
		next := conn.PageInfo.EndCursor
		cursor = &next
	}

	return teams, nil
}

// graphql posts req to the GraphQL endpoint and decodes the body into out.
func (c *Client) graphql(ctx context.Context, req graphqlRequest, out any) error {
	if c.token == "" {
		return fmt.Errorf("graphql requires a GitHub token")
	}

	bodyBytes, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshaling graphql request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.graphqlURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("creating graphql request: %w", err)
	}
	httpReq.Header.Set("Authorization", fmt.Sprintf("bearer %s", c.token))
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := graphqlHTTPClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("graphql request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("graphql request: HTTP %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding graphql response: %w", err)
	}

	return nil
}
