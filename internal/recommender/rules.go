package recommender

// SymptomRule maps a tag to the lowercase substrings that trigger it.
type SymptomRule struct {
	Tag      string
	Keywords []string
}

// DefaultRules returns a fresh copy of the built-in keyword table. Order is
// significant: detected tags are reported in this order.
func DefaultRules() []SymptomRule {
	return []SymptomRule{
		{Tag: "headache", Keywords: []string{"headache", "migraine", "head ache", "head hurts", "head pain", "head is pounding"}},
		{Tag: "stomach ache", Keywords: []string{"stomach", "nausea", "stomach ache", "tummy ache", "digestive", "tummy", "gut", "belly"}},
		{Tag: "sore throat", Keywords: []string{"throat", "sore throat", "strep", "scratchy throat", "throat pain"}},
		{Tag: "fever", Keywords: []string{"fever", "temperature", "hot", "chills", "feverish"}},
		{Tag: "cold", Keywords: []string{"cold", "congestion", "stuffy", "runny nose", "sneezing", "cough"}},
		{Tag: "pregnant", Keywords: []string{"pregnant", "pregnancy", "expecting"}},
		{Tag: "vegan", Keywords: []string{"vegan", "plant based"}},
		{Tag: "vegetarian", Keywords: []string{"vegetarian", "veggie"}},
		{Tag: "gluten free", Keywords: []string{"gluten free", "gluten-free", "celiac", "coeliac"}},
	}
}
