package fashion

import (
	"fmt"
	"strings"
)

// EditInstruction renders the natural-language edit prompt for one outfit. The
// wording matters: the generation model is instructed to swap garments only
// and keep the subject's identity, pose, and scene untouched.
func EditInstruction(outfit OutfitRecommendation, stylePrompt string) string {
	if strings.TrimSpace(stylePrompt) == "" {
		stylePrompt = "professional fashion photography, high quality, realistic lighting"
	}
	var b strings.Builder
	b.WriteString("Edit only the clothing in this image. Replace the current outfit with: ")
	b.WriteString(describeOutfit(outfit))
	b.WriteString(". PRESERVE COMPLETELY: person's face, skin tone, hair, body shape, pose, background, lighting. ")
	b.WriteString("CHANGE ONLY: the clothing items to match the new outfit description. ")
	fmt.Fprintf(&b, "Style: %s. Keep original photo quality and lighting.", stylePrompt)
	return b.String()
}

func describeOutfit(outfit OutfitRecommendation) string {
	parts := []string{
		garmentPhrase(outfit.Items.Top, "shirt"),
		garmentPhrase(outfit.Items.Bottom, "pants"),
		garmentPhrase(outfit.Items.Shoes, "shoes"),
	}
	if outfit.Items.Outerwear != nil && strings.TrimSpace(outfit.Items.Outerwear.Item) != "" {
		parts = append(parts, garmentPhrase(*outfit.Items.Outerwear, ""))
	}
	return strings.Join(parts, ", ")
}

func garmentPhrase(item OutfitItem, def string) string {
	name := strings.TrimSpace(item.Item)
	if name == "" {
		name = def
	}
	color := strings.TrimSpace(item.Color)
	if color == "" {
		color = "neutral"
	}
	return fmt.Sprintf("%s in %s color", name, color)
}
