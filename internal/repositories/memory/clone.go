package memory

import (
	"maps"
	"slices"

	"github.com/AlefLorenzo/DeliveryFoods/internal/models"
)

func (d *dataset) clone() *dataset {
	c := newDataset()
	for id, u := range d.users {
		c.users[id] = copyUser(u)
	}
	for id, r := range d.restaurants {
		c.restaurants[id] = copyRestaurant(r)
	}
	for id, p := range d.products {
		c.products[id] = copyProduct(p)
	}
	for id, o := range d.orders {
		c.orders[id] = copyOrder(o)
	}
	for id, ch := range d.channels {
		c.channels[id] = copyChannel(ch)
	}
	for id, msgs := range d.messages {
		cp := make([]*models.ChatMessage, len(msgs))
		for i, m := range msgs {
			cp[i] = copyMessage(m)
		}
		c.messages[id] = cp
	}
	for id, q := range d.quick {
		qc := *q
		c.quick[id] = &qc
	}
	for id, e := range d.earnings {
		ec := *e
		c.earnings[id] = &ec
	}
	for id, s := range d.statuses {
		sc := *s
		c.statuses[id] = &sc
	}
	c.audit = make([]*models.AuditEntry, len(d.audit))
	for i, a := range d.audit {
		c.audit[i] = copyAudit(a)
	}
	return c
}

func copyUser(u *models.User) *models.User {
	c := *u
	return &c
}

func copyRestaurant(r *models.Restaurant) *models.Restaurant {
	c := *r
	c.OperatingDays = slices.Clone(r.OperatingDays)
	c.Shifts = slices.Clone(r.Shifts)
	return &c
}

func copyProduct(p *models.Product) *models.Product {
	c := *p
	c.ShiftIDs = slices.Clone(p.ShiftIDs)
	return &c
}

func copyOrder(o *models.Order) *models.Order {
	c := *o
	c.Items = slices.Clone(o.Items)
	c.Timeline = slices.Clone(o.Timeline)
	if o.ChangeFor != nil {
		v := *o.ChangeFor
		c.ChangeFor = &v
	}
	return &c
}

func copyChannel(ch *models.ChatChannel) *models.ChatChannel {
	c := *ch
	c.LastMessage = nil
	return &c
}

func copyMessage(m *models.ChatMessage) *models.ChatMessage {
	c := *m
	if m.SenderID != nil {
		v := *m.SenderID
		c.SenderID = &v
	}
	if m.TemplateID != nil {
		v := *m.TemplateID
		c.TemplateID = &v
	}
	c.ReadBy = slices.Clone(m.ReadBy)
	return &c
}

func copyAudit(a *models.AuditEntry) *models.AuditEntry {
	c := *a
	c.Details = maps.Clone(a.Details)
	return &c
}
