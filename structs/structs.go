package structs

// ASResponse is the envelope returned by the provider's /ip/ endpoint.
type ASResponse struct {
	Status        string `json:"status"`
	StatusMessage string `json:"status_message"`
	Data          ASData `json:"data"`
}

// ASData holds the prefixes announcing the queried address, in provider order.
type ASData struct {
	Prefixes []ASPrefix `json:"prefixes"`
}

// ASPrefix is one announced prefix. Name, Description and CountryCode
// repeat what the provider puts in ASN and are only passed through.
type ASPrefix struct {
	Prefix      string `json:"prefix"`
	IP          string `json:"ip"`
	CIDR        uint32 `json:"cidr"`
	ASN         ASN    `json:"asn"`
	Name        string `json:"name"`
	Description string `json:"description"`
	CountryCode string `json:"country_code"`
}

type ASN struct {
	ASN         uint32 `json:"asn"`
	Name        string `json:"name"`
	Description string `json:"description"`
	CountryCode string `json:"country_code"`
}
