package eip712

import (
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

const (
	// DomainName is the name the communicator contract hashes into its domain separator
	DomainName = "EPNS COMM V1"

	// DomainVersion is empty: the communicator's domain typehash has no version member
	DomainVersion = ""
)

// Domain is the EIP-712 domain separator of a subscription signature.
// ChainID binds the signature to one chain, VerifyingContract to one contract.
type Domain struct {
	Name              string `json:"name"`
	Version           string `json:"version,omitempty"`
	ChainID           int64  `json:"chainId"`
	VerifyingContract string `json:"verifyingContract"`
}

// DomainFor builds the domain for chainID and verifyingContract.
// Name and version are protocol constants and cannot be chosen by callers.
func DomainFor(chainID int64, verifyingContract string) Domain {
	return Domain{
		Name:              DomainName,
		Version:           DomainVersion,
		ChainID:           chainID,
		VerifyingContract: verifyingContract,
	}
}

// Types returns the EIP712Domain members present in d, in canonical order
func (d Domain) Types() []apitypes.Type {
	types := []apitypes.Type{{Name: "name", Type: "string"}}
	if d.Version != "" {
		types = append(types, apitypes.Type{Name: "version", Type: "string"})
	}
	return append(types,
		apitypes.Type{Name: "chainId", Type: "uint256"},
		apitypes.Type{Name: "verifyingContract", Type: "address"},
	)
}

// TypedDataDomain converts d for go-ethereum's typed data encoder
func (d Domain) TypedDataDomain() apitypes.TypedDataDomain {
	return apitypes.TypedDataDomain{
		Name:              d.Name,
		Version:           d.Version,
		ChainId:           math.NewHexOrDecimal256(d.ChainID),
		VerifyingContract: d.VerifyingContract,
	}
}
