// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package keywords

// Field declares one mandatory regulatory disclosure with its accepted
// aliases. Aliases are matched literally (no transliteration) and in
// declaration order, so localized-script variants simply ride along in the
// list. The table is immutable configuration: loaded at startup, never
// mutated.
type Field struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Aliases     []string `yaml:"aliases"`
}

// DefaultFields returns the five built-in Legal Metrology disclosures.
func DefaultFields() []Field {
	return []Field{
		{
			Name:        "MRP",
			Description: "Maximum Retail Price",
			Aliases: []string{
				"MRP", "Maximum Retail Price", "Max Retail Price", "M.R.P", "M.R.P.",
				"Retail Price", "விலை", "அதிகபட்ச விலை",
			},
		},
		{
			Name:        "Net Quantity",
			Description: "Net Quantity / Weight",
			Aliases: []string{
				"Net Quantity", "Net Qty", "Net Wt", "Net Weight", "Net Wt.",
				"Net Content", "Nett Qty", "Weight", "Quantity",
				"எடை", "நிகர அளவு", "நிகர எடை",
			},
		},
		{
			Name:        "Month and Year of Manufacture",
			Description: "Manufacturing Date",
			Aliases: []string{
				"Month and Year of Manufacture", "Mfg Date", "Mfg.", "Manufacturing Date",
				"Manufactured", "Date of Manufacture", "MFD", "Manuf. Date",
				"தயாரிப்பு தேதி", "உற்பத்தி தேதி",
			},
		},
		{
			Name:        "Customer Care",
			Description: "Customer Care / Contact Information",
			Aliases: []string{
				"Customer Care", "Customer Service", "Consumer Care", "Contact",
				"Helpline", "Contact Us", "Customer Support", "Call Us",
				"வாடிக்கையாளர் சேவை", "தொடர்பு",
			},
		},
		{
			Name:        "Country of Origin",
			Description: "Country of Origin",
			Aliases: []string{
				"Country of Origin", "Made in", "Manufactured in", "Product of",
				"Origin", "Imported by", "Mfg. Country",
				"தயாரிப்பு நாடு", "உற்பத்தி நாடு",
			},
		},
	}
}
