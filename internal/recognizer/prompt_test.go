package recognizer

import (
	"context"
	"testing"

	"github.com/flexprice/notebilling/internal/domain/product"
	"github.com/flexprice/notebilling/internal/domain/salesperson"
	"github.com/flexprice/notebilling/internal/domain/taxrate"
	ierr "github.com/flexprice/notebilling/internal/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt(&MasterData{
		SalesPersons: []*salesperson.SalesPerson{{ID: 3, Name: "Suzuki"}},
		Products:     []*product.Product{{ID: 7, Name: "Rice 5kg", Price: 2400}},
		TaxRates:     []*taxrate.TaxRate{{ID: 1, Rate: decimal.NewFromFloat(0.1), DisplayName: "10%"}},
	})

	assert.Contains(t, prompt, "3: Suzuki")
	assert.Contains(t, prompt, "7: Rice 5kg (¥2400)")
	assert.Contains(t, prompt, "1: 10%")
	assert.Contains(t, prompt, `"salesPersonId" to null`)
}

func TestDisabled(t *testing.T) {
	_, err := Disabled{}.Recognize(context.Background(), Image{FileName: "a.jpg"})
	require.Error(t, err)
	assert.True(t, ierr.IsRecognition(err))
}

func TestRateLimitedCancelled(t *testing.T) {
	r := NewRateLimited(Disabled{}, 0.001, 1)
	ctx, cancel := context.WithCancel(context.Background())

	// the first call takes the only token
	_, _ = r.Recognize(ctx, Image{})
	cancel()

	_, err := r.Recognize(ctx, Image{})
	require.Error(t, err)
	assert.True(t, ierr.IsRecognition(err))
}
