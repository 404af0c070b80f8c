package domain

// Address is a delivery or billing address, stored verbatim on the order.
type Address struct {
	FullName      string `json:"fullName,omitempty"`
	AddressLine1  string `json:"addressLine1,omitempty"`
	AddressLine2  string `json:"addressLine2,omitempty"`
	AddressLine3  string `json:"addressLine3,omitempty"`
	City          string `json:"city,omitempty"`
	PostalCode    string `json:"postalCode,omitempty"`
	CountryCode   string `json:"countryCode,omitempty"`
	StateOrRegion string `json:"stateOrRegion,omitempty"`
	Email         string `json:"email,omitempty"`
	Phone         string `json:"phone,omitempty"`
	CompanyName   string `json:"companyName,omitempty"`
	TaxID         string `json:"taxId,omitempty"`
}

// IsCompleteCompany reports whether the address identifies a business buyer.
func (a Address) IsCompleteCompany() bool {
	return a.CompanyName != "" && a.TaxID != "" && a.AddressLine1 != "" &&
		a.City != "" && a.PostalCode != "" && a.CountryCode != ""
}
