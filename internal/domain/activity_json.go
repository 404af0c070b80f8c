package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Layouts accepted for dateTime. Rows written by older versions carry no zone and are read as UTC.
var dateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	time.DateOnly,
}

type activityJSON struct {
	EventID                 string               `json:"eventId"`
	ActivityID              string               `json:"activityId"`
	SubActivityID           string               `json:"subActivityId,omitempty"`
	DateTime                string               `json:"dateTime"`
	Currency                string               `json:"currency"`
	CountryCodeFrom         string               `json:"countryCodeFrom"`
	CountryCodeTo           string               `json:"countryCodeTo"`
	CountryCodeVatPaidTo    string               `json:"countryCodeVatPaidTo,omitempty"`
	AmountTaxed             jsonDecimal          `json:"amountTaxed"`
	AmountTaxes             jsonDecimal          `json:"amountTaxes"`
	TaxSource               TaxSource            `json:"taxSource"`
	TaxDeclaringCountryCode string               `json:"taxDeclaringCountryCode,omitempty"`
	TaxScheme               TaxScheme            `json:"taxScheme"`
	TaxJurisdictionLevel    TaxJurisdictionLevel `json:"taxJurisdictionLevel"`
	SaleType                SaleType             `json:"saleType"`
	VatTerritoryFrom        string               `json:"vatTerritoryFrom,omitempty"`
	VatTerritoryTo          string               `json:"vatTerritoryTo,omitempty"`
	TaxesComputed           *jsonDecimal         `json:"taxesComputed,omitempty"`
}

func (a Activity) MarshalJSON() ([]byte, error) {
	dto := activityJSON{
		EventID:                 a.p.EventID,
		ActivityID:              a.p.ActivityID,
		SubActivityID:           a.p.SubActivityID,
		DateTime:                a.p.DateTime.Format(time.RFC3339Nano),
		Currency:                a.p.Currency,
		CountryCodeFrom:         a.p.CountryCodeFrom,
		CountryCodeTo:           a.p.CountryCodeTo,
		CountryCodeVatPaidTo:    a.p.CountryCodeVatPaidTo,
		AmountTaxed:             jsonDecimal(a.p.Amount.Taxed),
		AmountTaxes:             jsonDecimal(a.p.Amount.Taxes),
		TaxSource:               a.p.TaxSource,
		TaxDeclaringCountryCode: a.p.TaxDeclaringCountryCode,
		TaxScheme:               a.p.TaxScheme,
		TaxJurisdictionLevel:    a.p.TaxJurisdictionLevel,
		SaleType:                a.p.SaleType,
		VatTerritoryFrom:        a.p.VatTerritoryFrom,
		VatTerritoryTo:          a.p.VatTerritoryTo,
	}
	if a.p.TaxesComputed.Valid {
		c := jsonDecimal(a.p.TaxesComputed.Decimal)
		dto.TaxesComputed = &c
	}
	return json.Marshal(dto)
}

// UnmarshalJSON decodes and validates an activity. Validation failures are
// returned as *ValidationError.
func (a *Activity) UnmarshalJSON(b []byte) error {
	var dto activityJSON
	if err := json.Unmarshal(b, &dto); err != nil {
		return fmt.Errorf("decode activity: %w", err)
	}
	p := ActivityParams{
		EventID:                 dto.EventID,
		ActivityID:              dto.ActivityID,
		SubActivityID:           dto.SubActivityID,
		Currency:                dto.Currency,
		CountryCodeFrom:         dto.CountryCodeFrom,
		CountryCodeTo:           dto.CountryCodeTo,
		CountryCodeVatPaidTo:    dto.CountryCodeVatPaidTo,
		TaxDeclaringCountryCode: dto.TaxDeclaringCountryCode,
		TaxScheme:               dto.TaxScheme,
		TaxJurisdictionLevel:    dto.TaxJurisdictionLevel,
		TaxSource:               dto.TaxSource,
		SaleType:                dto.SaleType,
		VatTerritoryFrom:        dto.VatTerritoryFrom,
		VatTerritoryTo:          dto.VatTerritoryTo,
		Amount:                  NewAmount(decimal.Decimal(dto.AmountTaxed), decimal.Decimal(dto.AmountTaxes)),
	}
	if dto.TaxesComputed != nil {
		p.TaxesComputed = decimal.NewNullDecimal(decimal.Decimal(*dto.TaxesComputed))
	}
	if dto.DateTime != "" {
		t, err := ParseDateTime(dto.DateTime)
		if err != nil {
			return NewValidationError("dateTime", "invalid ISO-8601 timestamp")
		}
		p.DateTime = t
	}
	act, err := NewActivity(p)
	if err != nil {
		return err
	}
	*a = act
	return nil
}

// ParseDateTime parses an ISO-8601 date or timestamp.
func ParseDateTime(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range dateTimeLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
