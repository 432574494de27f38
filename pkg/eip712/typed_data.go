package eip712

import (
	"fmt"

	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

// TypedData assembles the full EIP-712 payload
func TypedData(domain Domain, schema Schema, message Message) apitypes.TypedData {
	return apitypes.TypedData{
		Types:       schema.Types(domain),
		PrimaryType: schema.PrimaryType,
		Domain:      domain.TypedDataDomain(),
		Message:     message.Map(),
	}
}

// Hash returns the EIP-712 digest keccak256("\x19\x01" || domainSeparator || hashStruct(message))
func Hash(domain Domain, schema Schema, message Message) ([]byte, error) {
	if message.Action != "" && schema.PrimaryType != string(message.Action) {
		return nil, fmt.Errorf("message for %s does not match schema %s", message.Action, schema.PrimaryType)
	}

	digest, _, err := apitypes.TypedDataAndHash(TypedData(domain, schema, message))
	if err != nil {
		return nil, fmt.Errorf("failed to hash typed data: %w", err)
	}
	return digest, nil
}
