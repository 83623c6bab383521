package models

import (
	"fmt"
	"strings"
)

// InvoiceType is the charge type an administrator picks when billing a resident
type InvoiceType int

const (
	InvoiceTypeRent InvoiceType = iota
	InvoiceTypeElectricity
	InvoiceTypeWater
	InvoiceTypeInternet
	InvoiceTypeService
	InvoiceTypeRepair
	InvoiceTypeParking
	InvoiceTypeOther

	numInvoiceTypes
)

// InvoiceCategory is the stored, coarser grouping used for reporting
type InvoiceCategory string

const (
	InvoiceCategoryRent        InvoiceCategory = "rent"
	InvoiceCategoryUtilities   InvoiceCategory = "utilities"
	InvoiceCategoryMaintenance InvoiceCategory = "maintenance"
	InvoiceCategoryParking     InvoiceCategory = "parking"
	InvoiceCategoryOther       InvoiceCategory = "other"
)

type invoiceTypeInfo struct {
	name     string
	category InvoiceCategory
}

// Every InvoiceType must have an entry here. The array is sized by its keys,
// so the assertion below fails to compile when the two drift apart.
var invoiceTypes = [...]invoiceTypeInfo{
	InvoiceTypeRent:        {"RENT", InvoiceCategoryRent},
	InvoiceTypeElectricity: {"ELECTRICITY", InvoiceCategoryUtilities},
	InvoiceTypeWater:       {"WATER", InvoiceCategoryUtilities},
	InvoiceTypeInternet:    {"INTERNET", InvoiceCategoryUtilities},
	InvoiceTypeService:     {"SERVICE", InvoiceCategoryMaintenance},
	InvoiceTypeRepair:      {"REPAIR", InvoiceCategoryMaintenance},
	InvoiceTypeParking:     {"PARKING", InvoiceCategoryParking},
	InvoiceTypeOther:       {"OTHER", InvoiceCategoryOther},
}

var _ = [1]int{}[len(invoiceTypes)-int(numInvoiceTypes)]

// AllInvoiceTypes lists the types in declaration order
func AllInvoiceTypes() []InvoiceType {
	types := make([]InvoiceType, 0, numInvoiceTypes)
	for t := InvoiceType(0); t < numInvoiceTypes; t++ {
		types = append(types, t)
	}
	return types
}

// ParseInvoiceType accepts the upper-case names used by the admin form.
func ParseInvoiceType(s string) (InvoiceType, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for i, info := range invoiceTypes {
		if info.name == name {
			return InvoiceType(i), nil
		}
	}
	return 0, fmt.Errorf("unknown invoice type %q", s)
}

func (t InvoiceType) Valid() bool {
	return t >= 0 && t < numInvoiceTypes
}

func (t InvoiceType) String() string {
	if !t.Valid() {
		return fmt.Sprintf("InvoiceType(%d)", int(t))
	}
	return invoiceTypes[t].name
}

// Category maps a charge type onto its reporting category.
func (t InvoiceType) Category() InvoiceCategory {
	if !t.Valid() {
		panic(fmt.Sprintf("models: invalid invoice type %d", int(t)))
	}
	return invoiceTypes[t].category
}
