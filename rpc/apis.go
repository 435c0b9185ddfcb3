package rpc

import (
	"github.com/Conflux-Chain/confura-evm/rpc/handler"
	"github.com/pkg/errors"
)

// API describes the set of methods offered over the RPC interface
type API struct {
	Namespace string      // namespace under which the rpc methods of Service are exposed
	Version   string      // api version for DApp's
	Service   interface{} // receiver instance which holds the methods
	Public    bool        // indication if the methods must be considered safe for public use
}

// Filter API modules by exposed modules settings.
// `exposedModules` is a setting list of API modules to expose via the RPC interface.
// If the module list is empty, all RPC API endpoints designated public will be exposed.
func filterExposedApis(allApis []API, exposedModules []string) (map[string]interface{}, error) {
	servedApis := make(map[string]interface{}, len(allApis))

	for _, api := range allApis {
		if len(exposedModules) == 0 { // empty module list, use all public RPC APIs
			if api.Public {
				servedApis[api.Namespace] = api.Service
			}
			continue
		}

		servedApis[api.Namespace] = api.Service
	}

	if len(exposedModules) == 0 {
		return servedApis, nil
	}

	filteredApis := make(map[string]interface{}, len(exposedModules))
	for _, m := range exposedModules {
		if svc, ok := servedApis[m]; ok {
			filteredApis[m] = svc
			continue
		}

		err := errors.Errorf("unkown module %v to be exposed", m)
		return map[string]interface{}{}, err
	}

	return filteredApis, nil
}

// evmApis returns the collection of built-in RPC APIs served from the indexed store.
func evmApis(provider handler.EthProvider, chainId uint64, clientVersion string) []API {
	return []API{
		{
			Namespace: "eth",
			Version:   "1.0",
			Service:   newEthAPI(provider, chainId),
			Public:    true,
		}, {
			Namespace: "debug",
			Version:   "1.0",
			Service:   newDebugAPI(provider),
			Public:    true,
		}, {
			Namespace: "web3",
			Version:   "1.0",
			Service:   newWeb3API(clientVersion),
			Public:    true,
		}, {
			Namespace: "net",
			Version:   "1.0",
			Service:   newNetAPI(chainId),
			Public:    true,
		},
	}
}
