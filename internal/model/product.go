package model

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// InvalidProductMessage is the user-visible text shown when name or price are rejected.
const InvalidProductMessage = "Inserisci un nome valido e un prezzo maggiore di 0"

// ErrInvalidProduct is returned when a product fails the non-blank name / positive price check.
var ErrInvalidProduct = errors.New("invalid product")

// Product represents a catalog record. The ID is assigned by the backend and never changes.
type Product struct {
	ID        int64   `json:"id"`
	Name      string  `json:"nome"`
	Price     float64 `json:"prezzo"`
	Available bool    `json:"disponibile"`
}

// NewProduct is the body of a create request; the backend assigns the ID.
type NewProduct struct {
	Name      string  `json:"nome"`
	Price     float64 `json:"prezzo"`
	Available bool    `json:"disponibile"`
}

// ProductPatch is a partial update. Nil fields are left untouched.
type ProductPatch struct {
	Name      *string  `json:"nome,omitempty"`
	Price     *float64 `json:"prezzo,omitempty"`
	Available *bool    `json:"disponibile,omitempty"`
}

// IsEmpty reports whether the patch carries no field at all.
func (p ProductPatch) IsEmpty() bool {
	return p.Name == nil && p.Price == nil && p.Available == nil
}

// Apply returns a copy of the product with the patch fields applied.
func (p ProductPatch) Apply(product Product) Product {
	if p.Name != nil {
		product.Name = *p.Name
	}
	if p.Price != nil {
		product.Price = *p.Price
	}
	if p.Available != nil {
		product.Available = *p.Available
	}
	return product
}

// AvailabilityPatch builds a patch that only changes availability.
func AvailabilityPatch(available bool) ProductPatch {
	return ProductPatch{Available: &available}
}

// FullPatch builds a patch carrying every editable field.
func FullPatch(name string, price float64, available bool) ProductPatch {
	return ProductPatch{Name: &name, Price: &price, Available: &available}
}

// ValidateFields checks that name is not blank and price is a finite positive number.
func ValidateFields(name string, price float64) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name must not be blank", ErrInvalidProduct)
	}
	if math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
		return fmt.Errorf("%w: price must be greater than 0", ErrInvalidProduct)
	}
	return nil
}

// Validate checks the product fields with ValidateFields.
func (p Product) Validate() error {
	return ValidateFields(p.Name, p.Price)
}
