package domain

import "math"

// AppliedSlab is the slab snapshot reported alongside a quote.
type AppliedSlab struct {
	MinAmount      float64  `json:"minAmount"`
	MaxAmount      *float64 `json:"maxAmount"`
	ShippingCharge float64  `json:"shippingCharge"`
}

// ShippingQuote is valid only at the instant it is computed. Orders copy the
// amounts at placement and never recompute them.
type ShippingQuote struct {
	Subtotal       float64      `json:"subtotal"`
	ShippingAmount float64      `json:"shippingAmount"`
	CODCharge      float64      `json:"codCharge"`
	GrandTotal     float64      `json:"grandTotal"`
	IsFreeShipping bool         `json:"isFreeShipping"`
	CODEnabled     bool         `json:"codEnabled"`
	AppliedSlab    *AppliedSlab `json:"appliedSlab"`
}

// ComputeCharges prices shipping and the COD surcharge for cartTotal.
// Free shipping zeroes both charges, COD included.
func ComputeCharges(cartTotal float64, paymentMethod string, settings ShippingSettings, slabs []ShippingSlab) ShippingQuote {
	q := ShippingQuote{
		Subtotal:   cartTotal,
		CODEnabled: settings.CODEnabled,
	}

	if settings.FreeShippingEnabled {
		q.IsFreeShipping = true
		q.GrandTotal = cartTotal
		return q
	}

	if slab := matchSlab(cartTotal, slabs); slab != nil {
		q.ShippingAmount = slab.ShippingCharge
		q.AppliedSlab = &AppliedSlab{
			MinAmount:      slab.MinAmount,
			MaxAmount:      slab.MaxAmount,
			ShippingCharge: slab.ShippingCharge,
		}
	}

	if IsCODPayment(paymentMethod) && settings.CODEnabled && settings.CODCharge > 0 {
		q.CODCharge = settings.CODCharge
	}

	q.GrandTotal = cartTotal + q.ShippingAmount + q.CODCharge
	return q
}

// matchSlab picks the active slab containing total. Ties go to the largest
// MinAmount.
func matchSlab(total float64, slabs []ShippingSlab) *ShippingSlab {
	var best *ShippingSlab
	for i := range slabs {
		s := &slabs[i]
		if !s.IsActive() || !s.Contains(total) {
			continue
		}
		if best == nil || s.MinAmount > best.MinAmount {
			best = s
		}
	}
	return best
}

func upperBound(s ShippingSlab) float64 {
	if s.MaxAmount == nil {
		return math.Inf(1)
	}
	return *s.MaxAmount
}

// SlabsOverlap reports whether the closed intervals of a and b intersect.
// It is symmetric.
func SlabsOverlap(a, b ShippingSlab) bool {
	return a.MinAmount <= upperBound(b) && b.MinAmount <= upperBound(a)
}

// FindOverlap returns the first active slab in existing, other than the one
// with excludeID, that overlaps candidate. Inactive candidates never conflict.
func FindOverlap(candidate ShippingSlab, existing []ShippingSlab, excludeID string) *ShippingSlab {
	if !candidate.IsActive() {
		return nil
	}
	for i := range existing {
		s := existing[i]
		if s.ID == excludeID || !s.IsActive() {
			continue
		}
		if SlabsOverlap(candidate, s) {
			return &existing[i]
		}
	}
	return nil
}
