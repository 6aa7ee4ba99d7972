package auth

// NavEntry is a single navigation affordance shown to authorized users.
type NavEntry struct {
	Path          string  `json:"path"`
	Label         string  `json:"label"`
	RequiredRoles RoleSet `json:"-"`
}

// DefaultLandingPath is the lowest-privilege landing page reachable by any
// authorized role; DecisionRedirectDefault sends callers here.
const DefaultLandingPath = "/dashboard"

// navEntries is the fixed, statically defined navigation in display order.
var navEntries = []NavEntry{
	{Path: "/dashboard", Label: "Dashboard", RequiredRoles: Roles(RoleMember, RoleTreasurer, RoleAdmin)},
	{Path: "/transactions", Label: "Transactions", RequiredRoles: Roles(RoleTreasurer, RoleAdmin)},
	{Path: "/inventory", Label: "Inventory", RequiredRoles: Roles(RoleMember, RoleTreasurer, RoleAdmin)},
	{Path: "/users", Label: "Users", RequiredRoles: Roles(RoleAdmin)},
}

// NavEntries returns a copy of the full static navigation definition.
func NavEntries() []NavEntry {
	out := make([]NavEntry, len(navEntries))
	copy(out, navEntries)
	return out
}

// VisibleNav returns the ordered subset of navigation entries whose required
// roles include the given role. Unauthorized entries are omitted entirely,
// not disabled, so restricted features are not leaked.
func VisibleNav(role Role) []NavEntry {
	visible := make([]NavEntry, 0, len(navEntries))
	for _, e := range navEntries {
		if e.RequiredRoles.Has(role) {
			visible = append(visible, e)
		}
	}
	return visible
}
