// Package search matches free-text symptom descriptions to Ayurvedic
// specializations and ranks doctors for the booking flow.
package search

import (
	"strings"
)

// MinSymptomLength is the shortest symptom description worth matching.
const MinSymptomLength = 10

// Ayurvedic specializations the keyword table maps onto.
const (
	SpecPanchakarma    = "Panchakarma Specialist"
	SpecKayachikitsa   = "Kayachikitsa (Internal Medicine)"
	SpecRasayana       = "Rasayana (Rejuvenation)"
	SpecSwasthavritta  = "Swasthavritta (Preventive Medicine)"
	SpecShalakyaTantra = "Shalakya Tantra (ENT & Ophthalmology)"
	SpecPrasutiTantra  = "Prasuti Tantra (Gynecology & Obstetrics)"
	SpecKaumaraBhritya = "Kaumara Bhritya (Pediatrics)"
	SpecGeneral        = "General Ayurveda"
)

type symptomRule struct {
	keywords        []string
	specializations []string
}

// Rules are cumulative: a description touching several symptom groups maps
// to the union of their specializations.
var symptomRules = []symptomRule{
	{
		keywords:        []string{"digest", "stomach", "bloat", "constip", "diarr", "acid", "gas", "ibs"},
		specializations: []string{SpecPanchakarma, SpecKayachikitsa},
	},
	{
		keywords:        []string{"stress", "anxiety", "sleep", "insomnia", "depress", "mental", "mind"},
		specializations: []string{SpecRasayana, SpecSwasthavritta},
	},
	{
		keywords:        []string{"pain", "joint", "arthrit", "back", "neck", "muscle", "inflam"},
		specializations: []string{SpecPanchakarma, SpecKayachikitsa},
	},
	{
		keywords:        []string{"skin", "rash", "eczema", "psoriasis", "acne", "itch"},
		specializations: []string{SpecKayachikitsa},
	},
	{
		keywords:        []string{"cough", "cold", "asthma", "breath", "lung", "respirat"},
		specializations: []string{SpecKayachikitsa, SpecShalakyaTantra},
	},
	{
		keywords:        []string{"period", "menstrual", "pregnan", "fertility", "pcos"},
		specializations: []string{SpecPrasutiTantra},
	},
	{
		keywords:        []string{"child", "baby", "infant", "pediatric"},
		specializations: []string{SpecKaumaraBhritya},
	},
}

var recommendationReasons = map[string]string{
	SpecPanchakarma:    "Panchakarma therapy is highly effective for detoxification, digestive disorders and chronic pain management",
	SpecRasayana:       "Rasayana treatments focus on rejuvenation, stress relief, immunity building and mental wellness",
	SpecKayachikitsa:   "Specializes in internal medicine with a holistic approach to treating systemic conditions",
	SpecShalakyaTantra: "Expert in treating ear, nose, throat and eye-related disorders using Ayurvedic principles",
	SpecKaumaraBhritya: "Specialized in child health care, growth and development using gentle Ayurvedic treatments",
	SpecPrasutiTantra:  "Focused on women's health, reproductive wellness and pregnancy care through Ayurveda",
	SpecGeneral:        "Experienced in treating a wide range of conditions with personalized Ayurvedic care",
}

// AnalyzeSymptoms maps a symptom description onto relevant specializations.
// Unrecognized descriptions fall back to General Ayurveda.
func AnalyzeSymptoms(symptoms string) []string {
	lower := strings.ToLower(symptoms)

	seen := make(map[string]bool)
	var specs []string
	for _, rule := range symptomRules {
		for _, kw := range rule.keywords {
			if !strings.Contains(lower, kw) {
				continue
			}
			for _, spec := range rule.specializations {
				if !seen[spec] {
					seen[spec] = true
					specs = append(specs, spec)
				}
			}
			break
		}
	}

	if len(specs) == 0 {
		specs = append(specs, SpecGeneral)
	}
	return specs
}

// ReasonFor explains why a specialization suits the patient's symptoms.
func ReasonFor(specialization string) string {
	if reason, ok := recommendationReasons[specialization]; ok {
		return reason
	}
	return "Comprehensive Ayurvedic treatment with proven expertise in patient care"
}

// MatchesDoctor reports whether a doctor fits the analyzed specializations
// or, failing that, whether their self-declared keyword list overlaps the
// symptom words.
func MatchesDoctor(doctorSpecs []string, customKeywords string, relevantSpecs []string, symptoms string) bool {
	for _, want := range relevantSpecs {
		for _, have := range doctorSpecs {
			wl, hl := strings.ToLower(want), strings.ToLower(have)
			if strings.Contains(hl, wl) || strings.Contains(wl, hl) {
				return true
			}
		}
	}

	symptomWords := significantWords(symptoms)
	for _, kw := range strings.Split(strings.ToLower(customKeywords), ",") {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		for _, word := range symptomWords {
			if strings.Contains(kw, word) || strings.Contains(word, kw) {
				return true
			}
		}
	}
	return false
}

// significantWords drops short filler words from the symptom text.
func significantWords(symptoms string) []string {
	var words []string
	for _, w := range strings.Fields(strings.ToLower(symptoms)) {
		if len(w) > 3 {
			words = append(words, w)
		}
	}
	return words
}
