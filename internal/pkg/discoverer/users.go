package discoverer

import (
	"context"
	"fmt"

	"github.com/canvas-downloader/canvas-downloader/internal/pkg/canvas"
)

const usersQuery = "users?include_inactive=true&include[]=avatar_url&include[]=enrollments&include[]=email&include[]=observed_users"

// UsersNode stores the course roster as users.json. It only exists when
// raw responses are saved.
type UsersNode struct {
	scope
	section
}

func (n *UsersNode) Key() string { return fmt.Sprintf("course/%d/users", n.CourseID) }

func (n *UsersNode) Expand(ctx context.Context, env *Env) (Expansion, error) {
	_, dump, err := fetchAll[canvas.User](ctx, env, n.endpoint(usersQuery))
	if err != nil {
		return Expansion{}, err
	}

	var expansion Expansion
	expansion.Add(n.jsonItem(env, "users", dump))

	return expansion, nil
}
