package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
)

// Country codes used by EU VAT that are not ISO 3166 regions.
var vatPseudoCountries = map[string]bool{
	"EL": true, // Greece
	"XI": true, // Northern Ireland
}

// ActivityParams is the input of NewActivity.
type ActivityParams struct {
	EventID                 string
	ActivityID              string
	SubActivityID           string
	DateTime                time.Time
	Currency                string
	CountryCodeFrom         string
	CountryCodeTo           string
	CountryCodeVatPaidTo    string
	TaxDeclaringCountryCode string
	TaxScheme               TaxScheme
	TaxJurisdictionLevel    TaxJurisdictionLevel
	TaxSource               TaxSource
	SaleType                SaleType
	VatTerritoryFrom        string
	VatTerritoryTo          string
	Amount                  Amount
	// TaxesComputed overrides the source taxes when TaxSource is SelfComputed or ManualOverride.
	TaxesComputed decimal.NullDecimal
}

// Activity is an immutable snapshot of one taxable event.
type Activity struct {
	p ActivityParams
}

// NewActivity validates p and builds an Activity. Every violated field is
// reported in the returned *ValidationError.
func NewActivity(p ActivityParams) (Activity, error) {
	p.EventID = strings.TrimSpace(p.EventID)
	p.ActivityID = strings.TrimSpace(p.ActivityID)
	p.SubActivityID = strings.TrimSpace(p.SubActivityID)
	p.Currency = strings.ToUpper(strings.TrimSpace(p.Currency))
	p.CountryCodeFrom = normalizeCountry(p.CountryCodeFrom)
	p.CountryCodeTo = normalizeCountry(p.CountryCodeTo)
	p.CountryCodeVatPaidTo = normalizeCountry(p.CountryCodeVatPaidTo)
	p.TaxDeclaringCountryCode = normalizeCountry(p.TaxDeclaringCountryCode)

	var verr ValidationError
	if p.EventID == "" {
		verr.Add("eventId", "required")
	}
	if p.ActivityID == "" {
		verr.Add("activityId", "required")
	}
	if p.DateTime.IsZero() {
		verr.Add("dateTime", "required")
	}
	switch {
	case p.Currency == "":
		verr.Add("currency", "required")
	default:
		if _, err := currency.ParseISO(p.Currency); err != nil {
			verr.Add("currency", "unknown ISO 4217 code")
		}
	}
	checkCountry(&verr, "countryCodeFrom", p.CountryCodeFrom, true)
	checkCountry(&verr, "countryCodeTo", p.CountryCodeTo, true)
	checkCountry(&verr, "countryCodeVatPaidTo", p.CountryCodeVatPaidTo, false)
	checkCountry(&verr, "taxDeclaringCountryCode", p.TaxDeclaringCountryCode, false)
	if !p.TaxScheme.IsValid() {
		verr.Add("taxScheme", "invalid value")
	}
	if !p.TaxJurisdictionLevel.IsValid() {
		verr.Add("taxJurisdictionLevel", "invalid value")
	}
	if !p.TaxSource.IsValid() {
		verr.Add("taxSource", "invalid value")
	}
	if !p.SaleType.IsValid() {
		verr.Add("saleType", "invalid value")
	}
	if err := verr.Err(); err != nil {
		return Activity{}, err
	}
	return Activity{p: p}, nil
}

func normalizeCountry(c string) string { return strings.ToUpper(strings.TrimSpace(c)) }

func checkCountry(verr *ValidationError, field, code string, required bool) {
	if code == "" {
		if required {
			verr.Add(field, "required")
		}
		return
	}
	if vatPseudoCountries[code] {
		return
	}
	if len(code) != 2 || !isUpperLetter(code[0]) || !isUpperLetter(code[1]) {
		verr.Add(field, "must be a two-letter country code")
		return
	}
	if _, err := language.ParseRegion(code); err != nil {
		verr.Add(field, "unknown country code")
	}
}

func isUpperLetter(c byte) bool { return c >= 'A' && c <= 'Z' }

func (a Activity) EventID() string                            { return a.p.EventID }
func (a Activity) ActivityID() string                         { return a.p.ActivityID }
func (a Activity) SubActivityID() string                      { return a.p.SubActivityID }
func (a Activity) DateTime() time.Time                        { return a.p.DateTime }
func (a Activity) Currency() string                           { return a.p.Currency }
func (a Activity) CountryCodeFrom() string                    { return a.p.CountryCodeFrom }
func (a Activity) CountryCodeTo() string                      { return a.p.CountryCodeTo }
func (a Activity) CountryCodeVatPaidTo() string               { return a.p.CountryCodeVatPaidTo }
func (a Activity) TaxDeclaringCountryCode() string            { return a.p.TaxDeclaringCountryCode }
func (a Activity) TaxScheme() TaxScheme                       { return a.p.TaxScheme }
func (a Activity) TaxJurisdictionLevel() TaxJurisdictionLevel { return a.p.TaxJurisdictionLevel }
func (a Activity) TaxSource() TaxSource                       { return a.p.TaxSource }
func (a Activity) SaleType() SaleType                         { return a.p.SaleType }
func (a Activity) VatTerritoryFrom() string                   { return a.p.VatTerritoryFrom }
func (a Activity) VatTerritoryTo() string                     { return a.p.VatTerritoryTo }
func (a Activity) AmountSource() Amount                       { return a.p.Amount }
func (a Activity) TaxesComputed() decimal.NullDecimal         { return a.p.TaxesComputed }

// Params returns a copy of the construction parameters.
func (a Activity) Params() ActivityParams { return a.p }

// Taxed is the tax-inclusive amount.
func (a Activity) Taxed() decimal.Decimal { return a.p.Amount.Taxed }

// Taxes is the effective tax: the computed override for self computed and
// manual sources, the source taxes otherwise.
func (a Activity) Taxes() decimal.Decimal {
	if a.p.TaxSource.UsesComputedTaxes() && a.p.TaxesComputed.Valid {
		return a.p.TaxesComputed.Decimal
	}
	return a.p.Amount.Taxes
}

// Untaxed is Taxed minus the effective tax.
func (a Activity) Untaxed() decimal.Decimal { return a.Taxed().Sub(a.Taxes()) }

// Effective returns the taxed amount with the effective tax.
func (a Activity) Effective() Amount { return Amount{Taxed: a.Taxed(), Taxes: a.Taxes()} }

// WithTaxesComputed returns a copy carrying a computed tax. A marketplace
// figure overridden by hand becomes ManualOverride, anything else SelfComputed.
func (a Activity) WithTaxesComputed(taxes decimal.Decimal) Activity {
	p := a.p
	p.TaxesComputed = decimal.NewNullDecimal(taxes)
	if p.TaxSource == TaxSourceMarketplaceProvided {
		p.TaxSource = TaxSourceManualOverride
	} else {
		p.TaxSource = TaxSourceSelfComputed
	}
	return Activity{p: p}
}

// Negated returns a copy with every amount negated.
func (a Activity) Negated() Activity {
	p := a.p
	p.Amount = p.Amount.Neg()
	if p.TaxesComputed.Valid {
		p.TaxesComputed.Decimal = p.TaxesComputed.Decimal.Neg()
	}
	return Activity{p: p}
}

// IsDifferentTaxes reports a material difference between two snapshots of the
// same event. Time of day is ignored, only the calendar day is compared.
func (a Activity) IsDifferentTaxes(o Activity) bool {
	if !a.Taxes().Equal(o.Taxes()) || !a.Taxed().Equal(o.Taxed()) {
		return true
	}
	if !sameDay(a.p.DateTime, o.p.DateTime) {
		return true
	}
	return a.p.Currency != o.p.Currency ||
		a.p.CountryCodeFrom != o.p.CountryCodeFrom ||
		a.p.CountryCodeTo != o.p.CountryCodeTo ||
		a.p.CountryCodeVatPaidTo != o.p.CountryCodeVatPaidTo ||
		a.p.TaxDeclaringCountryCode != o.p.TaxDeclaringCountryCode ||
		a.p.TaxScheme != o.p.TaxScheme ||
		a.p.SaleType != o.p.SaleType ||
		a.p.VatTerritoryFrom != o.p.VatTerritoryFrom ||
		a.p.VatTerritoryTo != o.p.VatTerritoryTo
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
