// Package ontology maps raw detector labels to a canonical ingredient
// vocabulary. All functions are pure and idempotent: feeding a canonical name
// back through Normalize returns it unchanged, and unknown tokens pass through
// cleaned rather than being dropped.
package ontology

import (
	"strings"

	"github.com/amosley/fridgechef/internal/domain"
)

// synonyms maps cleaned, singularized labels to one canonical form. Targets
// must themselves be canonical (lowercase, singular, no synonym entry of
// their own) or idempotence breaks.
var synonyms = map[string]string{
	"scallion":         "green onion",
	"spring onion":     "green onion",
	"capsicum":         "bell pepper",
	"red chili pepper": "chili pepper",
	"red chilli":       "chili pepper",
	"chilli":           "chili pepper",
	"aubergine":        "eggplant",
	"courgette":        "zucchini",
	"cilantro":         "coriander",
	"garbanzo bean":    "chickpea",
	"hen egg":          "egg",
	"whole milk":       "milk",
	"maize":            "corn",
	"rocket":           "arugula",
}

// irregularPlurals covers plural forms the suffix rules get wrong.
var irregularPlurals = map[string]string{
	"tomatoes":   "tomato",
	"potatoes":   "potato",
	"loaves":     "loaf",
	"leaves":     "leaf",
	"anchovies":  "anchovy",
	"berries":    "berry",
	"cherries":   "cherry",
	"radishes":   "radish",
	"peaches":    "peach",
	"olives":     "olive",
	"chives":     "chive",
}

// invariant holds names that end in "s" but are already singular.
var invariant = map[string]bool{
	"asparagus": true,
	"couscous":  true,
	"hummus":    true,
	"molasses":  true,
	"watercress": true,
	"swiss":     true,
}

// categories assigns known canonical names a category. Grounded in the
// detector's default class vocabulary; anything unknown is "other".
var categories = map[string]domain.Category{
	"apple": domain.CategoryProduce, "avocado": domain.CategoryProduce,
	"banana": domain.CategoryProduce, "bell pepper": domain.CategoryProduce,
	"broccoli": domain.CategoryProduce, "cabbage": domain.CategoryProduce,
	"carrot": domain.CategoryProduce, "cauliflower": domain.CategoryProduce,
	"celery": domain.CategoryProduce, "chili pepper": domain.CategoryProduce,
	"corn": domain.CategoryProduce, "cucumber": domain.CategoryProduce,
	"eggplant": domain.CategoryProduce, "garlic": domain.CategoryProduce,
	"grape": domain.CategoryProduce, "green onion": domain.CategoryProduce,
	"kiwi": domain.CategoryProduce, "lemon": domain.CategoryProduce,
	"lettuce": domain.CategoryProduce, "lime": domain.CategoryProduce,
	"mushroom": domain.CategoryProduce, "onion": domain.CategoryProduce,
	"orange": domain.CategoryProduce, "pea": domain.CategoryProduce,
	"potato": domain.CategoryProduce, "spinach": domain.CategoryProduce,
	"strawberry": domain.CategoryProduce, "blueberry": domain.CategoryProduce,
	"tomato": domain.CategoryProduce, "watermelon": domain.CategoryProduce,
	"zucchini": domain.CategoryProduce,

	"butter": domain.CategoryDairy, "cheese": domain.CategoryDairy,
	"milk": domain.CategoryDairy, "yogurt": domain.CategoryDairy,
	"cream": domain.CategoryDairy,

	"bacon": domain.CategoryProtein, "beef": domain.CategoryProtein,
	"chicken": domain.CategoryProtein, "egg": domain.CategoryProtein,
	"fish": domain.CategoryProtein, "ham": domain.CategoryProtein,
	"sausage": domain.CategoryProtein, "tofu": domain.CategoryProtein,
	"chickpea": domain.CategoryProtein, "bean": domain.CategoryProtein,

	"bread": domain.CategoryPantry, "flour": domain.CategoryPantry,
	"oil": domain.CategoryPantry, "pasta": domain.CategoryPantry,
	"pepper": domain.CategoryPantry, "rice": domain.CategoryPantry,
	"salt": domain.CategoryPantry, "sugar": domain.CategoryPantry,
}

// Normalize maps a raw detector label to its canonical ingredient name:
// lowercase, trimmed, collapsed whitespace, singular, synonym-mapped.
// Unknown tokens pass through cleaned; normalization never discards a label.
func Normalize(raw string) string {
	name := Clean(raw)
	if name == "" {
		return ""
	}
	name = Singularize(name)
	if canonical, ok := synonyms[name]; ok {
		return canonical
	}
	return name
}

// Clean lowercases, trims, and collapses separators without touching word
// forms. Detector canonicals use underscores (e.g. "bell_pepper").
func Clean(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.ReplaceAll(s, "_", " ")
	return strings.Join(strings.Fields(s), " ")
}

// Singularize converts a plural ingredient name to its singular form using an
// irregular table and conservative suffix rules. Already-singular names are
// returned unchanged.
func Singularize(name string) string {
	if invariant[name] {
		return name
	}
	if s, ok := irregularPlurals[name]; ok {
		return s
	}
	// Only the last word carries the plural ("bell peppers", "green onions").
	if idx := strings.LastIndexByte(name, ' '); idx >= 0 {
		return name[:idx+1] + Singularize(name[idx+1:])
	}
	switch {
	case strings.HasSuffix(name, "ies") && len(name) > 4:
		return name[:len(name)-3] + "y"
	case strings.HasSuffix(name, "sses"), strings.HasSuffix(name, "shes"),
		strings.HasSuffix(name, "ches"), strings.HasSuffix(name, "xes"):
		return name[:len(name)-2]
	case strings.HasSuffix(name, "s") && !strings.HasSuffix(name, "ss") && len(name) > 3:
		return name[:len(name)-1]
	}
	return name
}

// CategoryOf returns the category for a canonical name, or CategoryOther for
// names outside the known vocabulary.
func CategoryOf(name string) domain.Category {
	if c, ok := categories[name]; ok {
		return c
	}
	return domain.CategoryOther
}
