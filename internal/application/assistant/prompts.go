package assistant

import (
	"fmt"
	"strings"

	"github.com/troves/backend/internal/domain/assistant"
	"github.com/troves/backend/internal/domain/catalog"
)

const chatSystemPrompt = "You are the friendly crystal guide for Troves & Coves, a small shop selling " +
	"handmade crystal jewelry. Answer in two to four warm sentences. Name specific crystals when you " +
	"suggest them. Never give medical advice and never invent prices or discounts."

const describeSystemPrompt = "You write product descriptions for Troves & Coves, a handmade crystal jewelry shop. " +
	"Write one paragraph of at most 80 words. Mention the crystal and what it is traditionally associated with. " +
	"Do not mention price, shipping or stock."

func describePrompt(p *catalog.Product) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Product: %s\n", p.Name)
	fmt.Fprintf(&b, "Category: %s\n", p.Category)
	if p.CrystalType != "" {
		fmt.Fprintf(&b, "Crystal: %s\n", p.CrystalType)
		if c, ok := assistant.LookupCrystal(p.CrystalType); ok {
			fmt.Fprintf(&b, "Crystal notes: %s; %s\n", c.Summary, strings.Join(c.Properties, ", "))
		}
	}
	if p.Description != "" {
		fmt.Fprintf(&b, "Existing copy: %s\n", p.Description)
	}
	return b.String()
}

// fallbackDescription builds a description from the knowledge base alone
func fallbackDescription(p *catalog.Product) string {
	kind := strings.TrimSuffix(string(p.Category), "s")
	if p.Category == catalog.CategoryOther || kind == "" {
		kind = "piece"
	}
	c, ok := assistant.LookupCrystal(p.CrystalType)
	if !ok {
		return fmt.Sprintf("%s is a handmade %s from Troves & Coves, finished by hand and chosen for its natural character.",
			p.Name, kind)
	}
	desc := fmt.Sprintf("%s is a handmade %s set with %s, %s.", p.Name, kind, c.Name, c.Summary)
	if len(c.Properties) > 0 {
		desc += fmt.Sprintf(" It is treasured as %s", assistant.JoinNatural(c.Properties))
		if len(c.Chakras) > 0 {
			desc += fmt.Sprintf(" and is linked to the %s chakra", c.Chakras[0])
		}
		desc += "."
	}
	return desc
}
