package util

import (
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"
)

// MarshalRLP encodes the value in RLP, returning nil for a nil value.
func MarshalRLP(v any) ([]byte, error) {
	if IsInterfaceValNil(v) {
		return nil, nil
	}

	data, err := rlp.EncodeToBytes(v)
	if err != nil {
		return nil, errors.WithMessagef(err, "failed to marshal %T to RLP", v)
	}

	return data, nil
}

// UnmarshalRLP decodes RLP data into the value.
func UnmarshalRLP(data []byte, v any) error {
	if err := rlp.DecodeBytes(data, v); err != nil {
		return errors.WithMessagef(err, "failed to unmarshal RLP data into %T, data = %x", v, data)
	}

	return nil
}
