package models

import "strings"

// Status is the offer/sale status of a record.
type Status int

const (
	StatusUnknown Status = iota
	OfferAvailable
	OfferLaunch
	Sold
	SoldLaunchedAndSold
	Cancelled
)

var statusNames = [...]string{
	"UNKNOWN",
	"OFFER_AVAILABLE",
	"OFFER_LAUNCH",
	"SOLD",
	"SOLD_LAUNCHED_AND_SOLD",
	"CANCELLED",
}

func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return statusNames[StatusUnknown]
	}
	return statusNames[s]
}

// statusAliases maps folded sheet labels to statuses.
var statusAliases = map[string]Status{
	"OFERTA DISPONIVEL":         OfferAvailable,
	"OFERTA":                    OfferAvailable,
	"DISPONIVEL":                OfferAvailable,
	"OFERTA LANCAMENTO":         OfferLaunch,
	"LANCAMENTO":                OfferLaunch,
	"VENDIDO":                   Sold,
	"VENDA":                     Sold,
	"VENDIDO LANCADO E VENDIDO": SoldLaunchedAndSold,
	"LANCADO E VENDIDO":         SoldLaunchedAndSold,
	"DISTRATO":                  Cancelled,
	"CANCELADO":                 Cancelled,
}

// ParseStatus maps a folded status label (see utils.Fold) to a Status.
// Unrecognized labels yield StatusUnknown.
func ParseStatus(folded string) Status {
	if s, ok := statusAliases[folded]; ok {
		return s
	}
	name := strings.ReplaceAll(folded, " ", "_")
	for i, n := range statusNames {
		if i > 0 && n == name {
			return Status(i)
		}
	}
	return StatusUnknown
}

// StatusSet is a filter over statuses.
type StatusSet map[Status]bool

// NewStatusSet builds a set from the given statuses.
func NewStatusSet(statuses ...Status) StatusSet {
	set := make(StatusSet, len(statuses))
	for _, s := range statuses {
		set[s] = true
	}
	return set
}

// Contains reports whether s is in the set. StatusUnknown is never contained.
func (set StatusSet) Contains(s Status) bool {
	return s != StatusUnknown && set[s]
}
