package common

const (
	ComponentFilterHub   = "filter-hub"
	ComponentJSONRPC     = "jsonrpc"
	ComponentRPCClient   = "rpc-client"
	ComponentChainStore  = "chain-store"
	ComponentFollower    = "follower"
	ComponentMetrics     = "metrics"
	ComponentMaintenance = "maintenance"
)

var AllComponents = map[string]struct{}{
	ComponentFilterHub:   {},
	ComponentJSONRPC:     {},
	ComponentRPCClient:   {},
	ComponentChainStore:  {},
	ComponentFollower:    {},
	ComponentMetrics:     {},
	ComponentMaintenance: {},
}
