package caip

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// NamespaceEVM is the CAIP namespace of EVM chains
const NamespaceEVM = "eip155"

var (
	namespacePattern = regexp.MustCompile(`^[-a-z0-9]{3,8}$`)
	networkIDPattern = regexp.MustCompile(`^[0-9]{1,32}$`)
	accountPattern   = regexp.MustCompile(`^[-.%a-zA-Z0-9]{1,128}$`)
)

// ChainAddress is a CAIP-10 account id: namespace:networkId:address
type ChainAddress struct {
	Namespace string `json:"namespace"`
	NetworkID string `json:"networkId"`
	Address   string `json:"address"`
}

// String returns the CAIP-10 form
func (a ChainAddress) String() string {
	return fmt.Sprintf("%s:%s:%s", a.Namespace, a.NetworkID, a.Address)
}

// ChainID returns the CAIP-2 chain id (namespace:networkId)
func (a ChainAddress) ChainID() string {
	return fmt.Sprintf("%s:%s", a.Namespace, a.NetworkID)
}

// Equal reports whether all three parts match exactly
func (a ChainAddress) Equal(other ChainAddress) bool {
	return a.Namespace == other.Namespace &&
		a.NetworkID == other.NetworkID &&
		a.Address == other.Address
}

// NumericNetworkID parses the network id as the EIP-712 chainId
func (a ChainAddress) NumericNetworkID() (int64, error) {
	id, err := strconv.ParseInt(a.NetworkID, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("network id %q is not a chain id: %w", a.NetworkID, err)
	}
	if id < 0 {
		return 0, fmt.Errorf("network id %q is negative", a.NetworkID)
	}
	return id, nil
}

// ParseDetails splits a CAIP-10 string into its parts.
// It never panics and returns nil for anything that is not a well-formed
// namespace:networkId:address triple.
func ParseDetails(s string) *ChainAddress {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return nil
	}

	addr := ChainAddress{Namespace: parts[0], NetworkID: parts[1], Address: parts[2]}
	if !namespacePattern.MatchString(addr.Namespace) {
		return nil
	}
	if !networkIDPattern.MatchString(addr.NetworkID) {
		return nil
	}
	if _, err := addr.NumericNetworkID(); err != nil {
		return nil
	}
	if !ValidAccount(addr.Namespace, addr.Address) {
		return nil
	}
	return &addr
}

// ValidAccount checks an address against the native format of its namespace.
// Only the EVM namespace is checked strictly.
func ValidAccount(namespace, address string) bool {
	if namespace == NamespaceEVM {
		return strings.HasPrefix(address, "0x") && common.IsHexAddress(address)
	}
	return accountPattern.MatchString(address)
}

// canonical returns the address in the form used on the wire.
// EVM addresses become EIP-55 checksummed.
func canonical(a ChainAddress) ChainAddress {
	if a.Namespace == NamespaceEVM {
		a.Address = common.HexToAddress(a.Address).Hex()
	}
	return a
}
