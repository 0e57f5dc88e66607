package domain

// TenantContext describes one branded storefront for the lifetime of a single
// request: its concierge persona and where its live inventory can be fetched.
type TenantContext struct {
	PersonaName        string
	PersonaDescription string
	InventoryEndpoint  string
}

// InventoryItem is one catalog record from a tenant's inventory service. The
// pipeline holds a read-only, request-scoped snapshot of these and never
// mutates them.
type InventoryItem struct {
	Name       string
	Price      *float64
	URL        string
	ImageURL   string
	Attributes string
}
