package booking

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/vibast-solutions/ms-go-bike-bookings/app/entity"
	"gopkg.in/yaml.v3"
)

const UnknownGlyph = "🤷"

var ErrInvalidCatalog = errors.New("invalid slot catalog")

// Catalog is the fixed list of bookable slots, configured at deploy time.
type Catalog struct {
	slots []entity.Slot
	index map[string]int
}

// Offer is a slot on a given date, identified by its booking key.
type Offer struct {
	ID   string
	Date string
	Slot entity.Slot
}

func NewCatalog(slots []entity.Slot) (*Catalog, error) {
	if len(slots) == 0 {
		return nil, fmt.Errorf("%w: no slots", ErrInvalidCatalog)
	}

	c := &Catalog{
		slots: make([]entity.Slot, 0, len(slots)),
		index: make(map[string]int, len(slots)),
	}
	for _, slot := range slots {
		slot.ID = strings.TrimSpace(slot.ID)
		if slot.ID == "" || strings.Contains(slot.ID, memoSeparator) {
			return nil, fmt.Errorf("%w: slot id %q", ErrInvalidCatalog, slot.ID)
		}
		if _, exists := c.index[slot.ID]; exists {
			return nil, fmt.Errorf("%w: duplicate slot id %q", ErrInvalidCatalog, slot.ID)
		}
		if slot.Amount <= 0 {
			return nil, fmt.Errorf("%w: slot %q amount must be > 0", ErrInvalidCatalog, slot.ID)
		}
		c.index[slot.ID] = len(c.slots)
		c.slots = append(c.slots, slot)
	}

	return c, nil
}

// DefaultCatalog is the nine-bike fleet, each priced at amount.
func DefaultCatalog(amount int64) *Catalog {
	glyphs := []string{"🚴", "🚴‍♀️", "🚴‍♂️", "🚴‍♀️", "🚴‍♂️", "🚴‍♂️", "🚴‍♂️", "🚴‍♂️", "🚴‍♂️"}
	slots := make([]entity.Slot, 0, len(glyphs))
	for i, glyph := range glyphs {
		slots = append(slots, entity.Slot{ID: fmt.Sprintf("%d", i+1), Amount: amount, Glyph: glyph})
	}
	c, _ := NewCatalog(slots)
	return c
}

// LoadCatalog reads a YAML slot list. An empty path yields DefaultCatalog.
func LoadCatalog(path string, defaultAmount int64) (*Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultCatalog(defaultAmount), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read slot catalog: %w", err)
	}

	var file struct {
		Slots []entity.Slot `yaml:"slots"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse slot catalog: %w", err)
	}
	for i := range file.Slots {
		if file.Slots[i].Amount == 0 {
			file.Slots[i].Amount = defaultAmount
		}
	}

	return NewCatalog(file.Slots)
}

// SlotAmount is the whole-unit display price for a configured full price,
// rounded up so a slot never asks for less than a valid booking needs.
func SlotAmount(fullPrice float64) int64 {
	return decimal.NewFromFloat(fullPrice).Ceil().IntPart()
}

// CheckPricing rejects slots whose price would not buy a valid booking under policy.
func (c *Catalog) CheckPricing(policy PricePolicy) error {
	for _, slot := range c.slots {
		if decimal.NewFromInt(slot.Amount).LessThan(policy.FullMinimum) {
			return fmt.Errorf("%w: slot %q amount %d is below the minimum %s",
				ErrInvalidCatalog, slot.ID, slot.Amount, policy.FullMinimum.String())
		}
	}
	return nil
}

func (c *Catalog) Slots() []entity.Slot {
	out := make([]entity.Slot, len(c.slots))
	copy(out, c.slots)
	return out
}

func (c *Catalog) Lookup(id string) (entity.Slot, bool) {
	i, ok := c.index[id]
	if !ok {
		return entity.Slot{}, false
	}
	return c.slots[i], true
}

func (c *Catalog) Glyph(id string) string {
	if slot, ok := c.Lookup(id); ok && slot.Glyph != "" {
		return slot.Glyph
	}
	return UnknownGlyph
}

func (c *Catalog) Offers(dates ...string) []Offer {
	offers := make([]Offer, 0, len(dates)*len(c.slots))
	for _, date := range dates {
		for _, slot := range c.slots {
			offers = append(offers, Offer{ID: BookingKey(date, slot.ID), Date: date, Slot: slot})
		}
	}
	return offers
}
