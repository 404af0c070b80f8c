package domain

// TaxSource tells where the tax portion of an activity comes from.
// Persisted as an integer.
type TaxSource int

const (
	TaxSourceUnknown TaxSource = iota
	TaxSourceMarketplaceProvided
	TaxSourceSelfComputed
	TaxSourceManualOverride
)

var taxSourceNames = [...]string{"Unknown", "MarketplaceProvided", "SelfComputed", "ManualOverride"}

func (s TaxSource) String() string {
	if !s.IsValid() {
		return "TaxSource(invalid)"
	}
	return taxSourceNames[s]
}

func (s TaxSource) IsValid() bool { return s >= 0 && int(s) < len(taxSourceNames) }

// UsesComputedTaxes reports whether the effective tax is the computed override.
func (s TaxSource) UsesComputedTaxes() bool {
	return s == TaxSourceSelfComputed || s == TaxSourceManualOverride
}

// TaxScheme is the VAT regime an activity is declared under.
type TaxScheme int

const (
	TaxSchemeUnknown TaxScheme = iota
	TaxSchemeDomesticVat
	TaxSchemeEuOssUnion
	TaxSchemeEuOssNonUnion
	TaxSchemeEuIoss
	TaxSchemeImportVat
	TaxSchemeReverseChargeImport
	TaxSchemeReverseChargeDomestic
	TaxSchemeMarketplaceDeemedSupplier
	TaxSchemeExempt
	TaxSchemeOutOfScope
)

var taxSchemeNames = [...]string{
	"Unknown", "DomesticVat", "EuOssUnion", "EuOssNonUnion", "EuIoss", "ImportVat",
	"ReverseChargeImport", "ReverseChargeDomestic", "MarketplaceDeemedSupplier",
	"Exempt", "OutOfScope",
}

func (s TaxScheme) String() string {
	if !s.IsValid() {
		return "TaxScheme(invalid)"
	}
	return taxSchemeNames[s]
}

func (s TaxScheme) IsValid() bool { return s >= 0 && int(s) < len(taxSchemeNames) }

// TaxJurisdictionLevel is the administrative level the tax is owed to.
type TaxJurisdictionLevel int

const (
	TaxJurisdictionUnknown TaxJurisdictionLevel = iota
	TaxJurisdictionSupranational
	TaxJurisdictionCountry
	TaxJurisdictionRegion
	TaxJurisdictionCity
	TaxJurisdictionPostalCode
	TaxJurisdictionTerritory
	TaxJurisdictionZone
)

var taxJurisdictionNames = [...]string{
	"Unknown", "Supranational", "Country", "Region", "City", "PostalCode", "Territory", "Zone",
}

func (l TaxJurisdictionLevel) String() string {
	if !l.IsValid() {
		return "TaxJurisdictionLevel(invalid)"
	}
	return taxJurisdictionNames[l]
}

func (l TaxJurisdictionLevel) IsValid() bool { return l >= 0 && int(l) < len(taxJurisdictionNames) }

// SaleType distinguishes goods, services and stock transfers.
type SaleType int

const (
	SaleTypeProducts SaleType = iota
	SaleTypeService
	SaleTypeInventoryMove
)

var saleTypeNames = [...]string{"Products", "Service", "InventoryMove"}

func (t SaleType) String() string {
	if !t.IsValid() {
		return "SaleType(invalid)"
	}
	return saleTypeNames[t]
}

func (t SaleType) IsValid() bool { return t >= 0 && int(t) < len(saleTypeNames) }

// ActivitySourceType is the kind of upstream feed.
type ActivitySourceType int

const (
	ActivitySourceReport ActivitySourceType = iota
	ActivitySourceAPI
)

func (t ActivitySourceType) String() string {
	switch t {
	case ActivitySourceReport:
		return "Report"
	case ActivitySourceAPI:
		return "API"
	}
	return "ActivitySourceType(invalid)"
}

func (t ActivitySourceType) IsValid() bool {
	return t == ActivitySourceReport || t == ActivitySourceAPI
}

// PostingStatus is the lifecycle state of a ledger row.
type PostingStatus string

const (
	PostingStatusDraft     PostingStatus = "Draft"
	PostingStatusPublished PostingStatus = "Published"
)

func (s PostingStatus) String() string { return string(s) }

func (s PostingStatus) IsValid() bool {
	switch s {
	case PostingStatusDraft, PostingStatusPublished:
		return true
	}
	return false
}

// RevisionKind tells how a ledger row entered its lineage.
type RevisionKind string

const (
	RevisionOriginal RevisionKind = "Original"
	RevisionReversal RevisionKind = "Reversal"
	RevisionVersion  RevisionKind = "Version"
)

func (k RevisionKind) String() string { return string(k) }

func (k RevisionKind) IsValid() bool {
	switch k {
	case RevisionOriginal, RevisionReversal, RevisionVersion:
		return true
	}
	return false
}

// PostingKind separates shipments from refunds. Both share one persistence path.
type PostingKind string

const (
	PostingKindShipment PostingKind = "Shipment"
	PostingKindRefund   PostingKind = "Refund"
)

func (k PostingKind) String() string { return string(k) }

func (k PostingKind) IsValid() bool {
	switch k {
	case PostingKindShipment, PostingKindRefund:
		return true
	}
	return false
}

// DocumentType is the accounting document a posting revision maps to.
type DocumentType string

const (
	DocumentInvoice    DocumentType = "Invoice"
	DocumentCreditNote DocumentType = "CreditNote"
)

func (d DocumentType) String() string { return string(d) }

// DocumentTypeFor returns the document issued for a revision of the given posting kind.
// A shipment is invoiced and a refund credited; a reversal flips the document.
func DocumentTypeFor(kind PostingKind, rev RevisionKind) DocumentType {
	refund := kind == PostingKindRefund
	if rev == RevisionReversal {
		refund = !refund
	}
	if refund {
		return DocumentCreditNote
	}
	return DocumentInvoice
}

// DocumentPrefix is the numbering prefix of a document type.
func (d DocumentType) Prefix() string {
	if d == DocumentCreditNote {
		return "CN"
	}
	return "INV"
}
