package calculator

import (
	"time"

	"github.com/mmynk/outlate/internal/models"
)

// fridayNight is the two-receipt outing used across the calculator tests:
// a by-item pizza dinner fronted by person-1 and an equal bar tab fronted by
// person-2.
func fridayNight() *models.Outing {
	return &models.Outing{
		ID:        "outing-1",
		Name:      "Friday Night Dinner",
		Date:      time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		CreatedBy: "user-1",
		People: []models.Person{
			{ID: "person-1", Name: "Alex Johnson"},
			{ID: "person-2", Name: "Jordan Smith"},
			{ID: "person-3", Name: "Sam Wilson"},
			{ID: "person-4", Name: "Morgan Lee"},
		},
		Receipts: []models.Receipt{luigis(), nightOwl()},
		Status:   models.StatusActive,
	}
}

func luigis() models.Receipt {
	return models.Receipt{
		ID:         "receipt-1",
		OutingID:   "outing-1",
		VendorName: "Luigi's Pizzeria",
		Items: []models.ReceiptItem{
			{ID: "item-1", Name: "Margherita Pizza", Price: 1800, Quantity: 1, AssignedTo: []string{"person-1", "person-2"}},
			{ID: "item-2", Name: "Craft Beer", Price: 800, Quantity: 2, AssignedTo: []string{"person-1"}},
			{ID: "item-3", Name: "Caesar Salad", Price: 1200, Quantity: 1, AssignedTo: []string{"person-2", "person-3"}},
			{ID: "item-4", Name: "Tiramisu", Price: 900, Quantity: 1, AssignedTo: []string{"person-3"}},
		},
		Subtotal:       5500,
		Tax:            495,
		Tip:            1100,
		Total:          7095,
		PaidBy:         "person-1",
		SplitMethod:    models.SplitByItem,
		IncludedPeople: []string{"person-1", "person-2", "person-3"},
	}
}

func nightOwl() models.Receipt {
	return models.Receipt{
		ID:         "receipt-2",
		OutingID:   "outing-1",
		VendorName: "The Night Owl Bar",
		Items: []models.ReceiptItem{
			{ID: "item-5", Name: "Whiskey Sour", Price: 1400, Quantity: 2, AssignedTo: []string{"person-1", "person-4"}},
			{ID: "item-6", Name: "Margarita", Price: 1300, Quantity: 1, AssignedTo: []string{"person-2"}},
			{ID: "item-7", Name: "Nachos", Price: 1600, Quantity: 1, AssignedTo: []string{"person-1", "person-2", "person-3", "person-4"}},
			{ID: "item-8", Name: "Wings", Price: 1500, Quantity: 1, AssignedTo: []string{"person-3", "person-4"}},
		},
		Subtotal:       7200,
		Tax:            648,
		Tip:            1440,
		Total:          9288,
		PaidBy:         "person-2",
		SplitMethod:    models.SplitEqual,
		IncludedPeople: []string{"person-1", "person-2", "person-3", "person-4"},
	}
}

func sharesByPerson(shares []models.PersonShare) map[string]models.PersonShare {
	out := make(map[string]models.PersonShare, len(shares))
	for _, s := range shares {
		out[s.PersonID] = s
	}
	return out
}
