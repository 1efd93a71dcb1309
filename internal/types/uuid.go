package types

import (
	"strings"
	"sync"

	"github.com/oklog/ulid/v2"
	"github.com/teris-io/shortid"
)

// GenerateUUID returns a k-sortable ULID
func GenerateUUID() string {
	return ulid.Make().String()
}

// GenerateUUIDWithPrefix returns prefix_ULID, e.g. dn_01J9Z3Q8M6VQ4W0Y9T1R2S3K4X
func GenerateUUIDWithPrefix(prefix string) string {
	if prefix == "" {
		return GenerateUUID()
	}
	return prefix + "_" + GenerateUUID()
}

// shortIDLength caps human facing numbers such as SI-4KD9QX2A
const shortIDLength = 12

var shortIDs = sync.OnceValue(func() *shortid.Shortid {
	return shortid.MustNew(1, shortid.DefaultABC, 2342)
})

// GenerateShortIDWithPrefix returns an upper-case number of at most 12 characters
// including prefix. The tail of a ULID is used if shortid fails.
func GenerateShortIDWithPrefix(prefix string) string {
	id, err := shortIDs().Generate()
	if err != nil {
		u := GenerateUUID()
		id = u[len(u)-shortIDLength:]
	}
	id = strings.ReplaceAll(id, "-", "")
	id = strings.ReplaceAll(id, "_", "")

	if n := shortIDLength - len(prefix); len(id) > n {
		id = id[:max(n, 0)]
	}
	return strings.ToUpper(prefix + id)
}

const (
	UUID_PREFIX_DELIVERY_NOTE      = "dn"
	UUID_PREFIX_DELIVERY_NOTE_LINE = "dn_line"
	UUID_PREFIX_SALES_INVOICE      = "si"
	UUID_PREFIX_SALES_INVOICE_LINE = "si_line"
	UUID_PREFIX_RECOGNITION_ENTRY  = "rec"
)

const (
	SHORT_ID_PREFIX_SALES_INVOICE = "SI-"
	DELIVERY_NOTE_NUMBER_PREFIX   = "DN-"
)
