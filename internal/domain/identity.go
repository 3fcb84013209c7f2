package domain

type BusinessDivision string

const (
	DivisionDispatch       BusinessDivision = "dispatch"
	DivisionSubcontracting BusinessDivision = "subcontracting"
	DivisionSupport        BusinessDivision = "support"
)

// Worker and ClientSite come from the identity registry and are never mutated by scheduling code.
type Worker struct {
	ID          string   `json:"workerID" yaml:"id"`
	DisplayName string   `json:"displayName" yaml:"name"`
	Nationality string   `json:"nationality" yaml:"nationality"`
	Skills      []string `json:"skills" yaml:"skills"`
}

type ClientSite struct {
	ID          string           `json:"clientID" yaml:"id"`
	DisplayName string           `json:"displayName" yaml:"name"`
	Region      string           `json:"region" yaml:"region"`
	Division    BusinessDivision `json:"division" yaml:"division"`
}

// Role comes from the planner's access token.
type Role string

const (
	RoleViewer  Role = "viewer"
	RolePlanner Role = "planner"
	RoleAdmin   Role = "admin"
)
