package seed

import (
	"time"

	"github.com/georgemunganga/life360-ops/internal/modules/order"
	"github.com/georgemunganga/life360-ops/internal/modules/practitioner"
)

type contact struct {
	provider, title, first, last         string
	email, phone, occupation             string
	city, province, postal               string
	registered                           bool
	interests, notes, signedUp           string
	onboarded, training, website, wa, eb bool
}

var contacts = []contact{
	{"Geneway", "Ms", "Thandi", "Mkhize", "thandi@example.com", "+27821234567", "Dietitian",
		"Cape Town", "Western Cape", "8001", true,
		"Genetic Screening\nNutrigenomics", "Cape Town clinic.", "2025-08-20",
		true, true, true, true, true},
	{"Optiway", "Mr", "Sipho", "Dlamini", "sipho@example.com", "+27842223344", "Health Coach",
		"Pretoria", "Gauteng", "0181", false,
		"Preventative Health, Microbiome", "Focus on microbiome kits.", "2025-08-22",
		false, false, false, false, false},
	{"Enbiosis", "Ms", "Lerato", "Moabi", "lerato@example.com", "+27839911111", "Dietician",
		"Bloemfontein", "Free State", "9301", true,
		"Gut Health\nDiet Planning", "Dietician partner.", "2025-08-12",
		true, true, true, true, false},
	{"Intelligene", "Dr", "Aisha", "Patel", "aisha.patel@example.com", "+27825559090", "Functional Medicine Practitioner",
		"Johannesburg", "Gauteng", "2191", true,
		"Autoimmunity; Nutrigenomics; Lifestyle Medicine", "New Intelligene contact.", "2025-07-29",
		false, true, true, true, false},
	{"Healthy Me", "Mrs", "Naledi", "Khoza", "naledi@example.com", "+27831112222", "Nutritionist",
		"Randburg", "Gauteng", "2194", false,
		"Weight Loss\nWomen’s Health", "Johannesburg North.", "2025-08-25",
		true, true, true, true, true},
	{"Intelligene Fedhealth", "Mr", "Kea", "Molefe", "kea@example.com", "+27823334444", "Health Coach",
		"Midrand", "Gauteng", "1685", false,
		"Chronic Disease Prevention | Fitness", "Fedhealth channel.", "2025-08-18",
		true, true, true, true, true},
	{"Geko", "Ms", "Zanele", "Nkosi", "zanele.nkosi@example.com", "+27835551212", "Wellness Practitioner",
		"Durban", "KwaZulu-Natal", "4001", false,
		"Sleep\nStress Management\nMetabolic Health", "", "2025-08-23",
		false, false, false, true, false},
	{"Geneway", "Dr", "Ridwaan", "Cassim", "rcassim@example.com", "+27827770001", "General Practitioner",
		"Port Elizabeth", "Eastern Cape", "6001", true,
		"Cardiometabolic; Preventative Medicine", "New to Geneway program.", "2025-08-26",
		false, true, false, false, false},
}

func demoPractitioners() []*practitioner.Practitioner {
	out := make([]*practitioner.Practitioner, 0, len(contacts))
	for _, c := range contacts {
		signed, _ := time.Parse("2006-01-02", c.signedUp)
		out = append(out, &practitioner.Practitioner{
			Provider:            c.provider,
			Title:               c.title,
			FirstName:           c.first,
			LastName:            c.last,
			Email:               c.email,
			Phone:               c.phone,
			Occupation:          c.occupation,
			City:                c.city,
			Province:            c.province,
			PostalCode:          c.postal,
			RegisteredWithBoard: c.registered,
			Interests:           c.interests,
			Notes:               c.notes,
			SignedUp:            &signed,
			Onboarding: practitioner.Onboarding{
				Onboarded: c.onboarded,
				Training:  c.training,
				Website:   c.website,
				WhatsApp:  c.wa,
				EngageBay: c.eb,
			},
		})
	}
	return out
}

type demoOrder struct {
	provider, name, surname string
	orderedAt               string
	items                   []order.ItemInput
	completed               bool
	practitioner, notes     string
}

var demoOrders = []demoOrder{
	{"Geneway", "Thandi", "Mkhize", "2025-08-27T09:30:00",
		[]order.ItemInput{{SKU: "KIT-GEN-01", Qty: "3"}}, false, "", "Demo order."},
	{"Optiway", "Sipho", "Dlamini", "2025-08-26T14:10:00",
		[]order.ItemInput{{SKU: "OPT-START", Qty: "2"}, {SKU: "OPT-PRO", Qty: "1"}}, false, "", "Urgent."},
	{"Enbiosis", "Lerato", "Moabi", "2025-08-20T10:00:00",
		[]order.ItemInput{{SKU: "ENB-BIO", Qty: "5"}}, true, "Lerato Moabi", "Completed batch."},
	{"Intelligene", "Aisha", "Patel", "2025-08-24T16:45:00",
		[]order.ItemInput{{SKU: "INT-GEN", Qty: "4"}}, false, "", "Follow up."},
	{"Healthy Me", "Naledi", "Khoza", "2025-08-26T12:00:00",
		[]order.ItemInput{{SKU: "HM-START", Qty: "3"}}, false, "", ""},
	{"Intelligene Fedhealth", "Kea", "Molefe", "2025-08-22T11:20:00",
		[]order.ItemInput{{SKU: "FED-BUNDLE", Qty: "2"}}, true, "Kea Molefe", ""},
}

func (d demoOrder) create() order.CreateOrderRequest {
	req := order.CreateOrderRequest{
		Provider:         d.provider,
		Name:             d.name,
		Surname:          d.surname,
		PractitionerName: d.practitioner,
		Notes:            d.notes,
		OrderedAt:        d.orderedAt,
		Status:           string(order.StatusPending),
		Items:            d.items,
	}
	if d.completed {
		req.Status = string(order.StatusCompleted)
	}
	return req
}

// update fills what the create form does not carry.
func (d demoOrder) update() order.UpdateOrderRequest {
	req := order.UpdateOrderRequest{
		PractitionerName: d.practitioner,
		Status:           string(order.StatusPending),
		Notes:            d.notes,
		EmailStatus:      "ok",
	}
	if d.completed {
		req.Status = string(order.StatusCompleted)
		req.Flags = order.Flags{SentOut: true, ReceivedBack: true, KitRegistered: true, ResultsSent: true, Paid: true, Invoiced: true}
	}
	return req
}
