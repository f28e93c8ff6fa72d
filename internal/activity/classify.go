package activity

import (
	"slices"

	"github.com/FA25-SWP391-SE1839-Group5/evdms/internal/event"
)

// Categories.
const (
	CategoryLifecycle      = "lifecycle"
	CategoryIdentity       = "identity"
	CategoryPricing        = "pricing"
	CategorySpecifications = "specifications"
	CategoryFeatures       = "features"
)

// Weights.
const (
	WeightSignificant = "significant"
	WeightModerate    = "moderate"
	WeightInfo        = "info"
)

// WeightOrder maps weights to numeric severity (lower = more severe).
var WeightOrder = map[string]int{
	WeightSignificant: 1,
	WeightModerate:    2,
	WeightInfo:        3,
}

// IsAtLeastWeight reports whether weight is at least as severe as min.
// Unknown weights never qualify.
func IsAtLeastWeight(weight, min string) bool {
	w, ok := WeightOrder[weight]
	if !ok {
		return false
	}
	m, ok := WeightOrder[min]
	if !ok {
		return true
	}
	return w <= m
}

// weightsAtLeast returns every weight at least as severe as min.
func weightsAtLeast(min string) []string {
	var out []string
	for w := range WeightOrder {
		if IsAtLeastWeight(w, min) {
			out = append(out, w)
		}
	}
	slices.Sort(out)
	return out
}

// Rule classifies an event type. Field, when set, restricts the rule to
// updates that changed that field.
type Rule struct {
	ID          string
	EventType   string
	Field       string
	Category    string
	Weight      string
	Description string
}

// Rules is the classification table.
var Rules = []Rule{
	{ID: "variant_created", EventType: event.TypeVariantCreated, Category: CategoryLifecycle, Weight: WeightInfo, Description: "Variant created"},
	{ID: "variant_deleted", EventType: event.TypeVariantDeleted, Category: CategoryLifecycle, Weight: WeightSignificant, Description: "Variant deleted"},
	{ID: "model_changed", EventType: event.TypeVariantUpdated, Field: "modelId", Category: CategoryIdentity, Weight: WeightSignificant, Description: "Moved to another model"},
	{ID: "renamed", EventType: event.TypeVariantUpdated, Field: "name", Category: CategoryIdentity, Weight: WeightInfo, Description: "Renamed"},
	{ID: "price_changed", EventType: event.TypeVariantUpdated, Field: "basePrice", Category: CategoryPricing, Weight: WeightModerate, Description: "Base price changed"},
	{ID: "specs_changed", EventType: event.TypeVariantUpdated, Field: "specs", Category: CategorySpecifications, Weight: WeightInfo, Description: "Specifications changed"},
	{ID: "features_changed", EventType: event.TypeVariantUpdated, Field: "features", Category: CategoryFeatures, Weight: WeightInfo, Description: "Features changed"},
}

// Classification is the result of matching an event against Rules.
type Classification struct {
	Categories   []string
	Weight       string
	Descriptions []string
}

// Classify matches an event type and its changed fields against Rules.
// Every matching rule contributes its category; the weight is the most
// severe among them. Returns ok=false when nothing matches, as for an
// update that changed nothing.
func Classify(eventType string, changed []string) (Classification, bool) {
	var c Classification
	for _, r := range Rules {
		if r.EventType != eventType {
			continue
		}
		if r.Field != "" && !slices.Contains(changed, r.Field) {
			continue
		}
		if !slices.Contains(c.Categories, r.Category) {
			c.Categories = append(c.Categories, r.Category)
		}
		c.Descriptions = append(c.Descriptions, r.Description)
		if c.Weight == "" || WeightOrder[r.Weight] < WeightOrder[c.Weight] {
			c.Weight = r.Weight
		}
	}
	return c, len(c.Categories) > 0
}
