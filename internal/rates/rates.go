// Package rates supplies the current commission price per processing type.
package rates

import (
	"context"
	"errors"
	"fmt"

	"github.com/buzzware/cash/internal/storage"
)

// ErrChargesUnavailable is returned when the charges table is empty.
// A charged operation cannot proceed without a price, so this is fatal
// to the operation.
var ErrChargesUnavailable = errors.New("charges not found in database")

// Charges maps a processing type to its commission price.
type Charges map[string]float64

// For returns the price for a processing type. Unknown types are
// indistinguishable from a missing price table to the caller, so they
// also fail with ErrChargesUnavailable.
func (c Charges) For(processingType string) (float64, error) {
	price, ok := c[processingType]
	if !ok {
		return 0, fmt.Errorf("%w: no price for processing type %q", ErrChargesUnavailable, processingType)
	}
	return price, nil
}

// Provider reads the commission price table. The table is read fresh on
// every call so a charged operation never uses a stale figure; callers
// fetch once per operation and pass the snapshot down explicitly.
type Provider struct {
	store storage.Store
}

// NewProvider creates a rate provider over the given store.
func NewProvider(store storage.Store) *Provider {
	return &Provider{store: store}
}

// Charges returns the current price table, or ErrChargesUnavailable
// when it is empty.
func (p *Provider) Charges(ctx context.Context) (Charges, error) {
	list, err := p.store.ListCharges(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load charges: %w", err)
	}
	if len(list) == 0 {
		return nil, ErrChargesUnavailable
	}

	charges := make(Charges, len(list))
	for _, charge := range list {
		charges[charge.Type] = charge.Price
	}
	return charges, nil
}
