package manifest

import "strings"

// AddressKind classifies an address by its human-readable prefix. This is
// a pure decode of the toolkit's bech32-style HRP, no network access.
type AddressKind int

const (
	AddressUnknown AddressKind = iota
	AddressAccount
	AddressComponent
	AddressFungibleResource
	AddressNonFungibleResource
)

// DecodeAddressKind inspects the part of the address before the first
// underscore. Resource managers carry their fungibility in the HRP.
func DecodeAddressKind(address string) AddressKind {
	hrp, _, ok := strings.Cut(address, "_")
	if !ok {
		return AddressUnknown
	}

	switch hrp {
	case "account":
		return AddressAccount
	case "component":
		return AddressComponent
	case "resource":
		return AddressFungibleResource
	case "nfresource":
		return AddressNonFungibleResource
	default:
		return AddressUnknown
	}
}

func (k AddressKind) String() string {
	switch k {
	case AddressAccount:
		return "account"
	case AddressComponent:
		return "component"
	case AddressFungibleResource:
		return "fungible_resource"
	case AddressNonFungibleResource:
		return "non_fungible_resource"
	default:
		return "unknown"
	}
}
