package canvas

import (
	"context"
	"fmt"
	"net/url"
)

// Self returns the owner of the API token
func (c *Client) Self(ctx context.Context) (*User, error) {
	return FetchOne[User](ctx, c, "/api/v1/users/self")
}

// Courses returns the courses the user is enrolled in, with their term
func (c *Client) Courses(ctx context.Context) ([]Course, error) {
	courses, err := FetchAll[Course](ctx, c, "/api/v1/users/self/courses?include[]=term")
	if err != nil {
		return nil, err
	}

	enrolled := make([]Course, 0, len(courses))
	for _, course := range courses {
		if len(course.Enrollments) == 0 {
			continue
		}
		enrolled = append(enrolled, course)
	}

	return enrolled, nil
}

// SessionToken returns a one-time URL that logs the user into the web
// interface and lands on returnTo
func (c *Client) SessionToken(ctx context.Context, returnTo string) (*SessionToken, error) {
	return FetchOne[SessionToken](ctx, c, "/login/session_token?return_to="+url.QueryEscape(returnTo))
}

// CourseEndpoint returns the API path of a course sub-resource
func CourseEndpoint(courseID int64, resource string) string {
	return fmt.Sprintf("/api/v1/courses/%d/%s", courseID, resource)
}
