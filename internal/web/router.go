package web

// The portal dispatches page requests through a static routing table: a path
// maps to a {handler, action} pair, exact string match only. Anything the
// table does not know falls through to static file serving.

const (
	HomeURL              = "/"
	LoginURL             = "/login"
	StudentHomeURL       = "/student"
	StudentSolutionsURL  = "/student/solutions"
	StudentAssignmentURL = "/student/assignment"
	StudentCommitURL     = "/student/commit"
	JudgeHomeURL         = "/judge"
	AdminHomeURL         = "/admin"
)

type Route struct {
	Handler string
	Action  string
}

type Router struct {
	routes map[string]Route
}

// NewRouter copies the routing table; the router never mutates after
// construction.
func NewRouter(routes map[string]Route) *Router {
	copied := make(map[string]Route, len(routes))
	for path, route := range routes {
		copied[path] = route
	}
	return &Router{routes: copied}
}

// Find returns the route for an exact path match. No patterns, no
// trailing-slash normalization: a miss means the path is not a page.
func (r *Router) Find(path string) (Route, bool) {
	route, ok := r.routes[path]
	return route, ok
}

// DefaultRoutes is the portal's routing table.
func DefaultRoutes() map[string]Route {
	return map[string]Route{
		HomeURL:              {Handler: "main", Action: "index"},
		LoginURL:             {Handler: "main", Action: "login"},
		StudentHomeURL:       {Handler: "student", Action: "home"},
		StudentSolutionsURL:  {Handler: "student", Action: "solutions"},
		StudentAssignmentURL: {Handler: "student", Action: "assignment"},
		StudentCommitURL:     {Handler: "student", Action: "commit"},
		JudgeHomeURL:         {Handler: "judge", Action: "home"},
		AdminHomeURL:         {Handler: "admin", Action: "home"},
	}
}
