package manifest

import "testing"

func TestDecodeAddressKind(t *testing.T) {
	cases := []struct {
		address string
		want    AddressKind
	}{
		{"account_sim1qjdkm", AddressAccount},
		{"component_sim1pool", AddressComponent},
		{"resource_sim1tkn", AddressFungibleResource},
		{"nfresource_sim1badge", AddressNonFungibleResource},
		{"package_sim1pkg", AddressUnknown},
		{"garbage", AddressUnknown},
		{"", AddressUnknown},
	}

	for _, c := range cases {
		if got := DecodeAddressKind(c.address); got != c.want {
			t.Errorf("DecodeAddressKind(%q) = %v, want %v", c.address, got, c.want)
		}
	}
}
