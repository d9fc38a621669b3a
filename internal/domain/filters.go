package domain

// DeploymentFilter defines filtering options for deployments
type DeploymentFilter struct {
	Namespace    string
	ChainID      uint64
	ContractName string
	Label        string
}

// DeploymentQuery represents a query for finding a single deployment
type DeploymentQuery struct {
	// Reference is the deployment identifier (ID, address, Contract[:label])
	Reference string
	// Optional: Chain ID for filtering
	ChainID uint64
	// Optional: Namespace for filtering
	Namespace string
}
