package jirasoap

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nhle/jirabridge/internal/tracker"
)

// dateTimeLayout is the xsd:dateTime form sent to the service.
const dateTimeLayout = "2006-01-02T15:04:05.000Z07:00"

var _ tracker.RemoteService = (*Client)(nil)

// Login authenticates and returns the session token.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	resp, err := c.call(ctx, "login",
		stringParam("", username),
		stringParam("", password),
	)
	if err != nil {
		return "", err
	}

	token := strings.TrimSpace(resp.text(resp.ret))
	if token == "" {
		return "", fmt.Errorf("login returned an empty token")
	}
	return token, nil
}

// Logout invalidates the session token.
func (c *Client) Logout(ctx context.Context, token string) error {
	_, err := c.call(ctx, "logout", stringParam("", token))
	return err
}

// AddComment appends a comment to an issue.
func (c *Client) AddComment(
	ctx context.Context,
	token string,
	issueID string,
	comment tracker.RemoteComment,
) error {
	_, err := c.call(ctx, "addComment",
		stringParam("", token),
		stringParam("", issueID),
		encodeComment(comment),
	)
	return err
}

// GetAvailableActions lists the workflow actions available on an issue.
func (c *Client) GetAvailableActions(
	ctx context.Context,
	token string,
	issueID string,
) ([]tracker.RemoteAction, error) {
	resp, err := c.call(ctx, "getAvailableActions",
		stringParam("", token),
		stringParam("", issueID),
	)
	if err != nil {
		return nil, err
	}

	items := resp.items(resp.ret)
	actions := make([]tracker.RemoteAction, 0, len(items))
	for _, item := range items {
		actions = append(actions, tracker.RemoteAction{
			ID:   strings.TrimSpace(resp.field(item, "id")),
			Name: resp.field(item, "name"),
		})
	}
	return actions, nil
}

// ProgressWorkflowAction runs a workflow action on an issue.
func (c *Client) ProgressWorkflowAction(
	ctx context.Context,
	token string,
	issueID string,
	actionID string,
	fields []tracker.FieldValue,
) error {
	values := make([]param, 0, len(fields))
	for _, f := range fields {
		vals := make([]param, 0, len(f.Values))
		for _, v := range f.Values {
			vals = append(vals, stringParam("", v))
		}
		values = append(values, structParam("", "beans:RemoteFieldValue",
			stringParam("id", f.ID),
			arrayParam("values", "xsd:string", vals...),
		))
	}

	_, err := c.call(ctx, "progressWorkflowAction",
		stringParam("", token),
		stringParam("", issueID),
		stringParam("", actionID),
		arrayParam("", "beans:RemoteFieldValue", values...),
	)
	return err
}

// GetComments lists the comments on an issue.
func (c *Client) GetComments(
	ctx context.Context,
	token string,
	issueID string,
) ([]tracker.RemoteComment, error) {
	resp, err := c.call(ctx, "getComments",
		stringParam("", token),
		stringParam("", issueID),
	)
	if err != nil {
		return nil, err
	}

	items := resp.items(resp.ret)
	comments := make([]tracker.RemoteComment, 0, len(items))
	for _, item := range items {
		comments = append(comments, tracker.RemoteComment{
			ID:        resp.field(item, "id"),
			Author:    resp.field(item, "author"),
			Body:      resp.field(item, "body"),
			RoleLevel: resp.field(item, "roleLevel"),
			Created:   parseDateTime(resp.field(item, "created")),
		})
	}
	return comments, nil
}

// encodeComment renders a RemoteComment bean. Unset optional members are
// sent as nil so the server applies its defaults.
func encodeComment(c tracker.RemoteComment) param {
	optional := func(name, value string) param {
		if value == "" {
			return nilParam(name)
		}
		return stringParam(name, value)
	}

	created := nilParam("created")
	if !c.Created.IsZero() {
		created = param{
			name:  "created",
			kind:  kindScalar,
			typ:   "xsd:dateTime",
			value: c.Created.Format(dateTimeLayout),
		}
	}

	return structParam("", "beans:RemoteComment",
		optional("author", c.Author),
		stringParam("body", c.Body),
		created,
		nilParam("groupLevel"),
		optional("roleLevel", c.RoleLevel),
	)
}

// parseDateTime parses an xsd:dateTime value. Jira emits several
// variants depending on version and locale.
func parseDateTime(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}

	layouts := []string{
		time.RFC3339Nano,
		"2006-01-02T15:04:05.000-0700",
		"2006-01-02T15:04:05-0700",
		"2006-01-02T15:04:05.000",
	}

	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}

	return time.Time{}
}
