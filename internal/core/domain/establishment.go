package domain

import (
	"fmt"
	"time"
)

// Plan is the subscription tier of an establishment.
type Plan string

const (
	PlanFree       Plan = "FREE"
	PlanBasic      Plan = "BASIC"
	PlanPro        Plan = "PRO"
	PlanEnterprise Plan = "ENTERPRISE"
)

// Unlimited marks a quota without an upper bound.
const Unlimited = -1

// PlanLimits are the per-collection quotas enforced at write time.
type PlanLimits struct {
	MaxAdmins               int `json:"maxAdmins"`
	MaxEmployees            int `json:"maxEmployees"`
	MaxClients              int `json:"maxClients"`
	MaxServices             int `json:"maxServices"`
	MaxProducts             int `json:"maxProducts"`
	MaxAppointmentsPerMonth int `json:"maxAppointmentsPerMonth"`
}

var planLimits = map[Plan]PlanLimits{
	PlanFree: {
		MaxAdmins:               1,
		MaxEmployees:            2,
		MaxClients:              50,
		MaxServices:             10,
		MaxProducts:             20,
		MaxAppointmentsPerMonth: 100,
	},
	PlanBasic: {
		MaxAdmins:               2,
		MaxEmployees:            5,
		MaxClients:              500,
		MaxServices:             30,
		MaxProducts:             100,
		MaxAppointmentsPerMonth: 1000,
	},
	PlanPro: {
		MaxAdmins:               5,
		MaxEmployees:            20,
		MaxClients:              5000,
		MaxServices:             100,
		MaxProducts:             1000,
		MaxAppointmentsPerMonth: 10000,
	},
	PlanEnterprise: {
		MaxAdmins:               Unlimited,
		MaxEmployees:            Unlimited,
		MaxClients:              Unlimited,
		MaxServices:             Unlimited,
		MaxProducts:             Unlimited,
		MaxAppointmentsPerMonth: Unlimited,
	},
}

// LimitsFor returns the quotas of a plan.
func LimitsFor(p Plan) (PlanLimits, error) {
	limits, ok := planLimits[p]
	if !ok {
		return PlanLimits{}, fmt.Errorf("unknown plan %q", p)
	}
	return limits, nil
}

// Allows reports whether a collection currently holding count documents may take one more.
func Allows(limit, count int) bool {
	return limit == Unlimited || count < limit
}

// Establishment is the tenant: a salon that owns clients, employees, services and appointments.
// Its EstablishmentID equals its own ID.
type Establishment struct {
	Document
	Name        string         `json:"name" validate:"required,max=120"`
	TaxDocument string         `json:"taxDocument" validate:"omitempty,max=32"`
	Email       string         `json:"email" validate:"omitempty,email"`
	Phone       string         `json:"phone" validate:"omitempty,max=32"`
	Address     string         `json:"address" validate:"omitempty,max=255"`
	Plan        Plan           `json:"plan" validate:"required,oneof=FREE BASIC PRO ENTERPRISE"`
	OpeningTime string         `json:"openingTime" validate:"omitempty,clock"`
	ClosingTime string         `json:"closingTime" validate:"omitempty,clock"`
	WorkingDays []time.Weekday `json:"workingDays" validate:"dive,min=0,max=6"`
	Timezone    string         `json:"timezone" validate:"omitempty,timezone"`
	IsActive    bool           `json:"isActive"`
	OwnerUserID string         `json:"ownerUserID"`
}

// Location resolves the establishment timezone, falling back to UTC.
func (e *Establishment) Location() *time.Location {
	if e.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(e.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// OpenOn reports whether the establishment works on the given weekday.
// An empty WorkingDays list means every day.
func (e *Establishment) OpenOn(day time.Weekday) bool {
	if len(e.WorkingDays) == 0 {
		return true
	}
	for _, d := range e.WorkingDays {
		if d == day {
			return true
		}
	}
	return false
}

// BusinessHours returns the opening window of the local day containing t. ok is false when
// the establishment is closed that day. Without configured hours the whole day is open.
func (e *Establishment) BusinessHours(t time.Time) (open, close time.Time, ok bool) {
	loc := e.Location()
	local := t.In(loc)
	if !e.OpenOn(local.Weekday()) {
		return time.Time{}, time.Time{}, false
	}
	y, m, d := local.Date()
	if e.OpeningTime == "" || e.ClosingTime == "" {
		open = time.Date(y, m, d, 0, 0, 0, 0, loc)
		return open, open.AddDate(0, 0, 1), true
	}
	oh, om, err1 := parseClock(e.OpeningTime)
	ch, cm, err2 := parseClock(e.ClosingTime)
	if err1 != nil || err2 != nil {
		return time.Time{}, time.Time{}, false
	}
	return time.Date(y, m, d, oh, om, 0, 0, loc), time.Date(y, m, d, ch, cm, 0, 0, loc), true
}

func parseClock(hhmm string) (int, int, error) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return 0, 0, err
	}
	return t.Hour(), t.Minute(), nil
}

// Usage is the current document count per quota-limited collection.
type Usage struct {
	Admins                int `json:"admins"`
	Employees             int `json:"employees"`
	Clients               int `json:"clients"`
	Services              int `json:"services"`
	Products              int `json:"products"`
	AppointmentsThisMonth int `json:"appointmentsThisMonth"`
}

// FitsWithin reports whether the usage stays inside the limits; it returns the first offending collection otherwise.
func (u Usage) FitsWithin(l PlanLimits) (bool, string) {
	checks := []struct {
		name  string
		used  int
		limit int
	}{
		{CollectionAdmins, u.Admins, l.MaxAdmins},
		{CollectionEmployees, u.Employees, l.MaxEmployees},
		{CollectionClients, u.Clients, l.MaxClients},
		{CollectionServices, u.Services, l.MaxServices},
		{CollectionProducts, u.Products, l.MaxProducts},
	}
	for _, c := range checks {
		if c.limit != Unlimited && c.used > c.limit {
			return false, c.name
		}
	}
	return true, ""
}

// UsageReport is the plan, its limits and the current usage of an establishment.
type UsageReport struct {
	EstablishmentID string     `json:"establishmentID"`
	Plan            Plan       `json:"plan"`
	Limits          PlanLimits `json:"limits"`
	Usage           Usage      `json:"usage"`
}
