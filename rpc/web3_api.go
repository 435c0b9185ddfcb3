package rpc

import (
	"context"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// web3API provides web3 RPC API.
type web3API struct {
	clientVersion string
}

func newWeb3API(clientVersion string) *web3API {
	return &web3API{clientVersion: clientVersion}
}

// ClientVersion returns the current client version.
func (api *web3API) ClientVersion(ctx context.Context) (string, error) {
	return api.clientVersion, nil
}

// Sha3 returns the Keccak-256 of the given data.
func (api *web3API) Sha3(ctx context.Context, input hexutil.Bytes) hexutil.Bytes {
	return crypto.Keccak256(input)
}
