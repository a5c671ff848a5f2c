package store

// Authenticator reports whether a user is signed in
type Authenticator interface {
	CheckAuth() bool
}

// Decision is the outcome of a guard check
type Decision struct {
	Allow    bool
	Redirect string
}

// Guard protects routes that need a signed-in user
type Guard struct {
	auth       Authenticator
	loginRoute string
	public     map[string]bool
}

// NewGuard creates a guard that sends anonymous users to loginRoute.
// The public routes never require authentication.
func NewGuard(auth Authenticator, loginRoute string, public ...string) *Guard {
	g := &Guard{
		auth:       auth,
		loginRoute: loginRoute,
		public:     make(map[string]bool, len(public)),
	}
	for _, r := range public {
		g.public[r] = true
	}
	return g
}

// Check decides whether route may be rendered. The login route itself is
// always allowed so an anonymous user is never redirected in a loop.
func (g *Guard) Check(route string) Decision {
	if g.auth.CheckAuth() || route == g.loginRoute || g.public[route] {
		return Decision{Allow: true}
	}
	return Decision{Redirect: g.loginRoute}
}

// LoginRoute returns the route anonymous users are sent to
func (g *Guard) LoginRoute() string {
	return g.loginRoute
}
