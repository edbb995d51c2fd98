package agents

import (
	"encoding/json"
	"fmt"
	"strings"
)

func analysisPrompt(req AnalysisRequest) string {
	constraints := strings.TrimSpace(req.Constraints)
	if constraints == "" {
		constraints = "None"
	}
	extra := ""
	if d := strings.TrimSpace(req.TextDescription); d != "" {
		extra = fmt.Sprintf("\n- User's own description: %s", d)
	}
	return fmt.Sprintf(`You are an expert fashion stylist and image analyst. Analyze this photo comprehensively for fashion styling purposes.

User Context:
- Style Preferences: %s
- Occasion: %s
- Additional Constraints: %s%s

Please provide a detailed analysis in the following JSON format:

{
  "body_analysis": {
    "body_type": "identified body type (pear, apple, hourglass, rectangle, inverted triangle)",
    "key_features": ["list of notable body features"],
    "proportions": "detailed description of body proportions",
    "posture_notes": "observations about posture and stance"
  },
  "color_analysis": {
    "skin_undertone": "warm/cool/neutral",
    "complexion_notes": "description of skin tone and complexion",
    "best_colors": ["list of 5-6 most flattering colors"],
    "colors_to_avoid": ["list of 3-4 colors to avoid"],
    "hair_color": "observed hair color if visible",
    "eye_color": "observed eye color if visible"
  },
  "current_style_analysis": {
    "current_outfit": "description of what they're wearing",
    "fit_assessment": "how well current clothes fit",
    "style_category": "current style category (casual, professional, etc.)",
    "strengths": ["what works well in current look"],
    "improvement_areas": ["areas that could be enhanced"]
  },
  "body_proportion_advice": {
    "silhouettes_to_emphasize": ["recommended silhouettes"],
    "areas_to_highlight": ["body areas to accentuate"],
    "styling_techniques": ["specific techniques for this body type"]
  },
  "occasion_suitability": {
    "current_appropriateness": "how suitable current look is for stated occasion",
    "needed_adjustments": ["adjustments needed for the occasion"]
  },
  "recommendations_summary": "2-3 sentence summary of key styling recommendations"
}

Analyze the image carefully and provide specific, actionable insights. Focus on:
1. Accurate body type identification
2. Precise color analysis based on skin tone
3. Constructive assessment of current style
4. Specific recommendations for the stated occasion
5. Professional but encouraging tone

Return only the JSON response, no additional text.`,
		compactJSON(req.Preferences), req.Occasion, constraints, extra)
}

func recommendationPrompt(req RecommendationRequest) string {
	return fmt.Sprintf(`You are a professional fashion stylist creating specific outfit recommendations based on the provided analysis.

ANALYSIS RESULTS:
%s

USER PREFERENCES: %s
OCCASION: %s
BUDGET RANGE: %s

Create 3 complete, specific outfit recommendations in this JSON format:

{
  "outfit_recommendations": [
    {
      "name": "Outfit name/theme",
      "description": "Overall look description (2-3 sentences)",
      "style_category": "style category (professional, casual, formal, etc.)",
      "items": {
        "top": {
          "item": "specific garment (e.g., 'silk blouse', 'cotton t-shirt')",
          "color": "specific color",
          "style_details": "cut, fit, and style specifics",
          "why": "explanation of why this works for user"
        },
        "bottom": {
          "item": "specific garment",
          "color": "specific color",
          "style_details": "cut, fit, and style specifics",
          "why": "explanation of why this works for user"
        },
        "shoes": {
          "item": "specific shoe type",
          "color": "specific color",
          "style_details": "heel height, style, etc.",
          "why": "explanation of why this works for user"
        },
        "outerwear": {
          "item": "jacket, blazer, cardigan, etc. (if needed)",
          "color": "specific color",
          "style_details": "cut and style details",
          "why": "explanation of why this works"
        },
        "accessories": [
          {
            "item": "specific accessory",
            "color": "color if applicable",
            "why": "explanation of impact"
          }
        ]
      },
      "styling_tips": ["specific styling technique 1", "specific styling technique 2"],
      "fit_notes": ["important fit considerations for this outfit"],
      "budget_estimate": "realistic price range based on requested budget",
      "occasion_appropriateness": "why this outfit works for the occasion",
      "shopping_suggestions": ["where to find these items", "what to look for when shopping"]
    }
  ],
  "general_styling_principles": [
    "key principle 1 for this body type",
    "key principle 2 for color choices",
    "key principle 3 for the occasion"
  ],
  "seasonal_considerations": "adjustments for current season",
  "care_and_maintenance": ["tips for maintaining recommended pieces"]
}

Guidelines:
- Ensure recommendations flatter the identified body type
- Use colors that complement the analyzed skin tone
- Make recommendations specific and actionable
- Include realistic budget considerations
- Provide constructive styling education
- Consider the specific occasion requirements

Return only the JSON response, no additional text.`,
		req.AnalysisResult, compactJSON(req.Preferences), req.Occasion, req.BudgetRange)
}

func compactJSON(v map[string]any) string {
	if len(v) == 0 {
		return "{}"
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(raw)
}
