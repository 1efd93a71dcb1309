package recognizer

import (
	"context"
	"fmt"
	"strings"

	"github.com/flexprice/notebilling/internal/domain/product"
	"github.com/flexprice/notebilling/internal/domain/salesperson"
	"github.com/flexprice/notebilling/internal/domain/taxrate"
)

// MasterData is the reference data the model has to map printed names onto
type MasterData struct {
	SalesPersons []*salesperson.SalesPerson
	Products     []*product.Product
	TaxRates     []*taxrate.TaxRate
}

// LoadMasterData reads the current reference lists
func LoadMasterData(
	ctx context.Context,
	salesPersons salesperson.Repository,
	products product.Repository,
	taxRates taxrate.Repository,
) (*MasterData, error) {
	persons, err := salesPersons.List(ctx, nil)
	if err != nil {
		return nil, err
	}
	prods, err := products.List(ctx)
	if err != nil {
		return nil, err
	}
	rates, err := taxRates.List(ctx)
	if err != nil {
		return nil, err
	}
	return &MasterData{SalesPersons: persons, Products: prods, TaxRates: rates}, nil
}

const promptTemplate = `You read scanned delivery notes and return their contents as JSON.

Map every printed name onto the lists below and answer with ids from these lists only.
Rules:
1. Every id must be an integer taken from the lists below.
2. If the sales person cannot be identified, set "salesPersonId" to null.
3. Leave out any product row that does not match a listed product.
4. "deliveryDate" is the delivery date written on the note, formatted YYYY-MM-DD.
5. "quantity" and "unitPrice" are integers; unitPrice is in yen.
6. If the image is not a readable delivery note, answer {"success": false, "failureReason": "<reason>"}.

Sales persons (id: name):
%s

Products (id: name (list price)):
%s

Tax rates (id: name):
%s`

// BuildPrompt renders the instruction text for the given reference data
func BuildPrompt(md *MasterData) string {
	var persons, products, rates strings.Builder
	for _, sp := range md.SalesPersons {
		fmt.Fprintf(&persons, "%d: %s\n", sp.ID, sp.Name)
	}
	for _, p := range md.Products {
		fmt.Fprintf(&products, "%d: %s (¥%d)\n", p.ID, p.Name, p.Price)
	}
	for _, tr := range md.TaxRates {
		fmt.Fprintf(&rates, "%d: %s\n", tr.ID, tr.DisplayName)
	}
	return fmt.Sprintf(promptTemplate,
		strings.TrimRight(persons.String(), "\n"),
		strings.TrimRight(products.String(), "\n"),
		strings.TrimRight(rates.String(), "\n"),
	)
}
