package rpc

import (
	"context"
	"strconv"
)

// netAPI provides net RPC API.
type netAPI struct {
	networkId string
}

func newNetAPI(chainId uint64) *netAPI {
	return &netAPI{networkId: strconv.FormatUint(chainId, 10)}
}

// Version returns the network id, which is the chain id in decimal.
func (api *netAPI) Version(ctx context.Context) (string, error) {
	return api.networkId, nil
}
