package recognizer

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/flexprice/notebilling/internal/domain/recognition"
	ierr "github.com/flexprice/notebilling/internal/errors"
	"github.com/flexprice/notebilling/internal/types"
	"github.com/invopop/jsonschema"
)

// FlexibleInt accepts a JSON number, a numeric string or null. Models are told to
// emit integers but regularly quote them.
type FlexibleInt struct {
	Value int64
	Valid bool
}

// JSONSchema describes the field as the integer the model is asked for
func (FlexibleInt) JSONSchema() *jsonschema.Schema {
	return &jsonschema.Schema{Type: "integer"}
}

func (f *FlexibleInt) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*f = FlexibleInt{}
		return nil
	}

	s := string(b)
	if b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*f = FlexibleInt{}
			return nil
		}
	}

	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		*f = FlexibleInt{Value: n, Valid: true}
		return nil
	}
	// 3.0 is fine, 3.5 is not
	if fl, err := strconv.ParseFloat(s, 64); err == nil && fl == float64(int64(fl)) {
		*f = FlexibleInt{Value: int64(fl), Valid: true}
		return nil
	}
	return ierr.NewErrorf("%q is not an integer", s).
		WithHint("Recognized value is not an integer").
		Mark(ierr.ErrValidation)
}

// wireResult is the JSON object the model is asked to return
type wireResult struct {
	Success       bool         `json:"success" jsonschema_description:"false when the image is not a readable delivery note"`
	SalesPersonID *FlexibleInt `json:"salesPersonId" jsonschema_description:"Sales person id from the master list, null when unknown"`
	DeliveryDate  string       `json:"deliveryDate" jsonschema_description:"Delivery date as YYYY-MM-DD"`
	TaxRateID     *FlexibleInt `json:"taxRateId" jsonschema_description:"Tax rate id from the master list"`
	Details       []wireLine   `json:"details" jsonschema_description:"One entry per product row"`
	FailureReason string       `json:"failureReason,omitempty" jsonschema_description:"Why the document could not be read"`
}

type wireLine struct {
	ProductID *FlexibleInt `json:"productId" jsonschema_description:"Product id from the master list"`
	Quantity  *FlexibleInt `json:"quantity" jsonschema_description:"Delivered quantity"`
	UnitPrice *FlexibleInt `json:"unitPrice" jsonschema_description:"Unit price in yen"`
}

// extractJSON strips markdown code fences and falls back to the outermost {...} block
func extractJSON(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if nl := strings.IndexByte(text, '\n'); nl >= 0 {
			// drop the language tag line, e.g. ```json
			text = text[nl+1:]
		}
		if end := strings.LastIndex(text, "```"); end >= 0 {
			text = text[:end]
		}
		text = strings.TrimSpace(text)
	}
	if json.Valid([]byte(text)) {
		return text
	}
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start >= 0 && end > start {
		return text[start : end+1]
	}
	return text
}

// ParseResponse normalizes raw model output into a Result. Malformed output and ids that
// are not integers fail with ErrValidation; a model-reported failure is a Result with
// Success false.
func ParseResponse(text string) (*recognition.Result, error) {
	raw := extractJSON(text)

	var w wireResult
	if err := json.Unmarshal([]byte(raw), &w); err != nil {
		if ierr.IsValidation(err) {
			return nil, err
		}
		return nil, ierr.WithError(err).
			WithHint("Recognizer returned malformed JSON").
			Mark(ierr.ErrValidation)
	}

	if !w.Success {
		reason := strings.TrimSpace(w.FailureReason)
		if reason == "" {
			reason = "the document could not be recognized"
		}
		res := recognition.Failed(reason)
		res.Raw = json.RawMessage(raw)
		return res, nil
	}

	res := &recognition.Result{Success: true, Raw: json.RawMessage(raw)}

	if w.SalesPersonID == nil || !w.SalesPersonID.Valid || w.SalesPersonID.Value <= 0 {
		return nil, ierr.NewError("salesPersonId missing").
			WithHint("The sales person could not be identified").
			Mark(ierr.ErrValidation)
	}
	res.SalesPersonID = w.SalesPersonID.Value

	if w.TaxRateID == nil || !w.TaxRateID.Valid || w.TaxRateID.Value <= 0 {
		return nil, ierr.NewError("taxRateId missing").
			WithHint("The tax rate could not be identified").
			Mark(ierr.ErrValidation)
	}
	res.TaxRateID = w.TaxRateID.Value

	d, err := types.ParseDate(w.DeliveryDate)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("The delivery date could not be read").
			Mark(ierr.ErrValidation)
	}
	res.DeliveryDate = types.NewDate(d)

	for i, l := range w.Details {
		// unknown products are dropped, as the prompt instructs
		if l.ProductID == nil || !l.ProductID.Valid {
			continue
		}
		if l.Quantity == nil || !l.Quantity.Valid || l.Quantity.Value < 1 {
			return nil, ierr.NewErrorf("line %d has no valid quantity", i).
				WithHint("A recognized quantity is missing or not positive").
				Mark(ierr.ErrValidation)
		}
		line := recognition.ResultLine{
			ProductID: l.ProductID.Value,
			Quantity:  l.Quantity.Value,
		}
		// zero means unread; the product list price applies on commit
		if l.UnitPrice != nil && l.UnitPrice.Valid && l.UnitPrice.Value > 0 {
			line.UnitPrice = l.UnitPrice.Value
		}
		res.Lines = append(res.Lines, line)
	}
	if len(res.Lines) == 0 {
		return nil, ierr.NewError("no product lines recognized").
			WithHint("No product on the document matched the product list").
			Mark(ierr.ErrValidation)
	}
	return res, nil
}
