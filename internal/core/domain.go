package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"

	SourceBank Source = "banco"
	SourceCash Source = "caixa"

	StatusPaid       Status = "pago"
	StatusReceivable Status = "a_receber"

	InputStandard PartInputType = "comum"
	InputDetailed PartInputType = "detalhado"

	// Uncategorized is the category assigned to transactions without one.
	Uncategorized = "Uncategorized"
)

type (
	TransactionType string
	Source          string
	Status          string
	PartInputType   string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Transaction is a single ledger entry. Income entries carry a status
	// (paid or receivable); expenses are implicitly paid.
	Transaction struct {
		ID          string          `json:"id,omitempty"`
		Date        Date            `json:"date"`
		Description string          `json:"description"`
		Amount      Money           `json:"amount"`
		Type        TransactionType `json:"type"`
		Category    string          `json:"category,omitempty"`
		Source      Source          `json:"source,omitempty"`
		Status      Status          `json:"status,omitempty"`
	}

	// Order is a client order made of one or more garment parts.
	Order struct {
		ID            string   `json:"id,omitempty"`
		ClientName    string   `json:"clientName"`
		ClientPhone   string   `json:"clientPhone,omitempty"`
		Status        string   `json:"orderStatus,omitempty"`
		OrderDate     Date     `json:"orderDate"`
		DeliveryDate  Date     `json:"deliveryDate,omitempty"`
		Observation   string   `json:"generalObservation,omitempty"`
		DownPayment   Money    `json:"downPayment"`
		Discount      Money    `json:"discount"`
		PaymentMethod string   `json:"paymentMethod,omitempty"`
		MockupURLs    []string `json:"mockupUrls,omitempty"`
		Parts         []Part   `json:"parts"`
	}

	// Part is one garment/product line within an order, priced independently.
	// Under InputStandard the part tallies quantities per size label inside a
	// size category, plus individually measured Specifics. Under InputDetailed
	// each unit is a named Details entry.
	Part struct {
		Type      string        `json:"type,omitempty"`
		Material  string        `json:"material,omitempty"`
		ColorMain string        `json:"colorMain,omitempty"`
		InputType PartInputType `json:"partInputType,omitempty"`

		Sizes     map[string]map[string]int `json:"sizes,omitempty"`
		Specifics []SpecificSize            `json:"specifics,omitempty"`
		Details   []DetailEntry             `json:"details,omitempty"`

		// UnitPrice is the legacy single price. The split prices, when
		// present, take precedence for their quantity group.
		UnitPrice         Money  `json:"unitPrice"`
		UnitPriceStandard *Money `json:"unitPriceStandard,omitempty"`
		UnitPriceSpecific *Money `json:"unitPriceSpecific,omitempty"`
	}

	// SpecificSize is a custom-dimension entry, always one unit.
	SpecificSize struct {
		Width       string `json:"width,omitempty"`
		Height      string `json:"height,omitempty"`
		Observation string `json:"observation,omitempty"`
	}

	// DetailEntry is one individually named unit of a detailed part.
	DetailEntry struct {
		Name   string `json:"name,omitempty"`
		Size   string `json:"size,omitempty"`
		Number string `json:"number,omitempty"`
	}

	// PriceEntry is a row of the reference price table.
	PriceEntry struct {
		ID          string `json:"id,omitempty"`
		Description string `json:"description"`
		Category    string `json:"category,omitempty"`
		UnitPrice   Money  `json:"unitPrice"`
	}

	// CompanySettings are flat presentation settings, no derived computation.
	CompanySettings struct {
		Name    string `json:"name,omitempty"`
		Phone   string `json:"phone,omitempty"`
		Address string `json:"address,omitempty"`
		LogoURL string `json:"logoUrl,omitempty"`
	}
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyDescription = errors.New("empty description")
	ErrInvalidType      = errors.New("invalid transaction type")
	ErrInvalidDate      = errors.New("invalid date")
	ErrNotReceivable    = errors.New("transaction is not a receivable")
	ErrEmptyClientName  = errors.New("empty client name")
)

// NewDate creates a date-only value at UTC midnight.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// MarshalJSON renders the date as YYYY-MM-DD; the zero date as null.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.Format("2006-01-02") + `"`), nil
}

// UnmarshalJSON accepts YYYY-MM-DD or null; anything else fails.
func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" || s == "" {
		d.Time = time.Time{}
		return nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return err
	}
	d.Time = DateOf(t).Time
	return nil
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// EffectiveCategory returns the transaction category, defaulting empty
// values to Uncategorized.
func (t Transaction) EffectiveCategory() string {
	if c := strings.TrimSpace(t.Category); c != "" {
		return c
	}
	return Uncategorized
}

// EffectiveSource returns the source account, defaulting to the bank
// account when unset.
func (t Transaction) EffectiveSource() Source {
	if t.Source == SourceCash {
		return SourceCash
	}
	return SourceBank
}

// Realized reports whether the amount has actually moved: every expense,
// and income not flagged as receivable.
func (t Transaction) Realized() bool {
	if t.Type == Income {
		return t.Status != StatusReceivable
	}
	return true
}

func (t Transaction) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(t.Description) == "" {
		return ErrEmptyDescription
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if t.Type != Income && t.Type != Expense {
		return ErrInvalidType
	}
	return nil
}

func (o Order) Validate() error {
	if strings.TrimSpace(o.ClientName) == "" {
		return ErrEmptyClientName
	}
	if err := o.OrderDate.Validate(); err != nil {
		return err
	}
	if o.Discount.Cents < 0 || o.DownPayment.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}
