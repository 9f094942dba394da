// Package measurements holds the per-garment measurement record captured for a
// customer and copied into each order.
package measurements

import (
	"errors"
	"fmt"
)

// Garment is one of the measured garment types.
type Garment string

const (
	GarmentShirt Garment = "shirt"
	GarmentPant  Garment = "pant"
	GarmentCoat  Garment = "coat"
	GarmentKurta Garment = "kurta"
	GarmentDhoti Garment = "dhoti"
)

// Garments lists every garment type in display order.
var Garments = []Garment{GarmentShirt, GarmentPant, GarmentCoat, GarmentKurta, GarmentDhoti}

var garmentFields = map[Garment][]string{
	GarmentShirt: {"chest", "waist", "shoulder", "length", "sleeveLength", "armhole", "collar"},
	GarmentPant:  {"waist", "hip", "length", "inseam", "thigh", "bottom"},
	GarmentCoat:  {"chest", "waist", "shoulder", "length", "sleeveLength"},
	GarmentKurta: {"chest", "waist", "shoulder", "length", "sleeveLength", "neck"},
	GarmentDhoti: {"waist", "length"},
}

var (
	ErrUnknownGarment = errors.New("unknown garment type")
	ErrUnknownField   = errors.New("unknown measurement field")
	ErrNegative       = errors.New("measurement must not be negative")
)

// Set is a measurement snapshot. A nil garment means no measurements were
// taken for it.
type Set struct {
	Shirt  *Shirt `json:"shirt,omitempty" dynamodbav:"shirt,omitempty"`
	Pant   *Pant  `json:"pant,omitempty" dynamodbav:"pant,omitempty"`
	Coat   *Coat  `json:"coat,omitempty" dynamodbav:"coat,omitempty"`
	Kurta  *Kurta `json:"kurta,omitempty" dynamodbav:"kurta,omitempty"`
	Dhoti  *Dhoti `json:"dhoti,omitempty" dynamodbav:"dhoti,omitempty"`
	Custom string `json:"custom,omitempty" dynamodbav:"custom,omitempty"`
}

// Fields returns the field names measured for g.
func Fields(g Garment) []string {
	return append([]string(nil), garmentFields[g]...)
}

// Has reports whether the set carries measurements for g.
func (s Set) Has(g Garment) bool {
	switch g {
	case GarmentShirt:
		return s.Shirt != nil
	case GarmentPant:
		return s.Pant != nil
	case GarmentCoat:
		return s.Coat != nil
	case GarmentKurta:
		return s.Kurta != nil
	case GarmentDhoti:
		return s.Dhoti != nil
	}
	return false
}

func (s Set) IsEmpty() bool {
	for _, g := range Garments {
		if s.Has(g) {
			return false
		}
	}
	return s.Custom == ""
}

// Clone returns a deep copy; edits to the copy never reach s.
func (s Set) Clone() Set {
	out := Set{Custom: s.Custom}
	if s.Shirt != nil {
		v := *s.Shirt
		out.Shirt = &v
	}
	if s.Pant != nil {
		v := *s.Pant
		out.Pant = &v
	}
	if s.Coat != nil {
		v := *s.Coat
		out.Coat = &v
	}
	if s.Kurta != nil {
		v := *s.Kurta
		out.Kurta = &v
	}
	if s.Dhoti != nil {
		v := *s.Dhoti
		out.Dhoti = &v
	}
	return out
}

// Merge returns a copy of dst where every garment present in src replaces
// dst's garment wholesale. Garments src lacks keep dst's values. Custom notes
// count as a key and are taken from src when non-empty.
func Merge(dst, src Set) Set {
	out := dst.Clone()
	in := src.Clone()
	if in.Shirt != nil {
		out.Shirt = in.Shirt
	}
	if in.Pant != nil {
		out.Pant = in.Pant
	}
	if in.Coat != nil {
		out.Coat = in.Coat
	}
	if in.Kurta != nil {
		out.Kurta = in.Kurta
	}
	if in.Dhoti != nil {
		out.Dhoti = in.Dhoti
	}
	if in.Custom != "" {
		out.Custom = in.Custom
	}
	return out
}

// fieldPtr resolves g.field. With alloc, a missing garment is created.
func (s *Set) fieldPtr(g Garment, field string, alloc bool) (*float64, error) {
	if err := checkField(g, field); err != nil {
		return nil, err
	}
	switch g {
	case GarmentShirt:
		if s.Shirt == nil {
			if !alloc {
				return nil, nil
			}
			s.Shirt = &Shirt{}
		}
		return nonNil(s.Shirt.field(field))
	case GarmentPant:
		if s.Pant == nil {
			if !alloc {
				return nil, nil
			}
			s.Pant = &Pant{}
		}
		return nonNil(s.Pant.field(field))
	case GarmentCoat:
		if s.Coat == nil {
			if !alloc {
				return nil, nil
			}
			s.Coat = &Coat{}
		}
		return nonNil(s.Coat.field(field))
	case GarmentKurta:
		if s.Kurta == nil {
			if !alloc {
				return nil, nil
			}
			s.Kurta = &Kurta{}
		}
		return nonNil(s.Kurta.field(field))
	case GarmentDhoti:
		if s.Dhoti == nil {
			if !alloc {
				return nil, nil
			}
			s.Dhoti = &Dhoti{}
		}
		return nonNil(s.Dhoti.field(field))
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownGarment, g)
}

func checkField(g Garment, field string) error {
	fields, ok := garmentFields[g]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownGarment, g)
	}
	for _, f := range fields {
		if f == field {
			return nil
		}
	}
	return ErrUnknownField
}

func nonNil(p *float64) (*float64, error) {
	if p == nil {
		return nil, ErrUnknownField
	}
	return p, nil
}

// Value reads g.field. ok is false when the garment was never measured.
func (s Set) Value(g Garment, field string) (float64, bool, error) {
	p, err := s.fieldPtr(g, field, false)
	if err != nil {
		return 0, false, fmt.Errorf("%s.%s: %w", g, field, err)
	}
	if p == nil {
		return 0, false, nil
	}
	return *p, true, nil
}

// SetValue writes g.field, creating the garment entry if needed.
func (s *Set) SetValue(g Garment, field string, v float64) error {
	if v < 0 {
		return fmt.Errorf("%s.%s: %w", g, field, ErrNegative)
	}
	p, err := s.fieldPtr(g, field, true)
	if err != nil {
		return fmt.Errorf("%s.%s: %w", g, field, err)
	}
	*p = v
	return nil
}

// Validate returns a message per negative field keyed "garment.field".
func (s Set) Validate() map[string]string {
	errs := map[string]string{}
	for _, g := range Garments {
		if !s.Has(g) {
			continue
		}
		for _, f := range garmentFields[g] {
			v, _, _ := s.Value(g, f)
			if v < 0 {
				errs[string(g)+"."+f] = "Measurement cannot be negative"
			}
		}
	}
	return errs
}
