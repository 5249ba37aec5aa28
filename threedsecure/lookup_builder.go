package threedsecure

// LookupRequestBody is the wire body for the gateway lookup call. The
// snake_case keys are fixed by the gateway contract and must not change.
type LookupRequestBody struct {
	Amount             string          `json:"amount"`
	DFReferenceID      string          `json:"df_reference_id,omitempty"`
	AccountType        string          `json:"account_type,omitempty"`
	ChallengeRequested bool            `json:"challenge_requested,omitempty"`
	DataOnlyRequested  bool            `json:"data_only_requested,omitempty"`
	ExemptionRequested bool            `json:"exemption_requested,omitempty"`
	CardAdd            *bool           `json:"card_add,omitempty"`
	AdditionalInfo     *AdditionalInfo `json:"additional_info,omitempty"`
}

// AdditionalInfo carries billing, shipping, and contact fields on the lookup
// body. Key names are part of the gateway contract.
type AdditionalInfo struct {
	BillingGivenName   string `json:"billing_given_name,omitempty"`
	BillingSurname     string `json:"billing_surname,omitempty"`
	BillingLine1       string `json:"billing_line1,omitempty"`
	BillingLine2       string `json:"billing_line2,omitempty"`
	BillingLine3       string `json:"billing_line3,omitempty"`
	BillingCity        string `json:"billing_city,omitempty"`
	BillingState       string `json:"billing_state,omitempty"`
	BillingPostalCode  string `json:"billing_postal_code,omitempty"`
	BillingCountryCode string `json:"billing_country_code,omitempty"`
	BillingPhoneNumber string `json:"billing_phone_number,omitempty"`
	MobilePhoneNumber  string `json:"mobile_phone_number,omitempty"`
	Email              string `json:"email,omitempty"`
	ShippingMethod     string `json:"shipping_method,omitempty"`
	AccountID          string `json:"account_id,omitempty"`
}

// BuildLookupBody is a pure transform from a verification request plus the
// device-fingerprint reference id to the lookup wire body. The reference id
// is only meaningful for version 2 and is dropped otherwise; an empty id is
// dropped regardless (engine setup failed, lookup proceeds without it).
func BuildLookupBody(req VerificationRequest, dfReferenceID string) LookupRequestBody {
	body := LookupRequestBody{
		Amount:             req.Amount,
		AccountType:        req.AccountType,
		ChallengeRequested: req.ChallengeRequested,
		DataOnlyRequested:  req.DataOnlyRequested,
		ExemptionRequested: req.ExemptionRequested,
		CardAdd:            req.CardAddChallenge,
	}
	if req.version() == VersionTwo {
		body.DFReferenceID = dfReferenceID
	}

	info := AdditionalInfo{
		MobilePhoneNumber: req.MobilePhoneNumber,
		Email:             req.Email,
		ShippingMethod:    req.ShippingMethod,
		AccountID:         req.AccountID,
	}
	if b := req.BillingAddress; b != nil {
		info.BillingGivenName = b.GivenName
		info.BillingSurname = b.Surname
		info.BillingLine1 = b.StreetAddress
		info.BillingLine2 = b.ExtendedAddress
		info.BillingLine3 = b.Line3
		info.BillingCity = b.Locality
		info.BillingState = b.Region
		info.BillingPostalCode = b.PostalCode
		info.BillingCountryCode = b.CountryCode
		info.BillingPhoneNumber = b.PhoneNumber
	}
	if info != (AdditionalInfo{}) {
		body.AdditionalInfo = &info
	}
	return body
}
