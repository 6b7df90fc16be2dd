package questionnaire

// Question is one yes/no dietary-restriction prompt. Keys must be unique
// within a set; a duplicate key would silently overwrite the earlier answer.
type Question struct {
	Key          string
	Prompt       string
	Illustration string
}

// Feedback is the pair of canned responses shown after an answer.
type Feedback struct {
	Yes string
	No  string
}

// DefaultQuestions is the fixed intake set, asked in order.
func DefaultQuestions() []Question {
	return []Question{
		{Key: "pork", Prompt: "Do you eat pork?", Illustration: "🥓"},
		{Key: "allergic_to_milk", Prompt: "Do you have an allergy to milk?", Illustration: "🥛"},
		{Key: "allergic_to_fish", Prompt: "Do you have an allergy to fish?", Illustration: "🐟"},
		{Key: "allergic_to_soy", Prompt: "Do you have an allergy to soy?", Illustration: "🌱"},
		{Key: "allergic_to_chicken", Prompt: "Are you allergic to chicken?", Illustration: "🍗"},
		{Key: "allergic_to_mussels", Prompt: "Are you allergic to mussels?", Illustration: "🦪"},
		{Key: "allergic_to_beef", Prompt: "Are you allergic to beef?", Illustration: "🥩"},
		{Key: "allergic_to_shrimp", Prompt: "Are you allergic to shrimp?", Illustration: "🦐"},
	}
}

// nutritionalFeedback maps question keys to the canned feedback lines.
var nutritionalFeedback = map[string]Feedback{
	"pork": {
		Yes: "As you consume pork, we'll incorporate pork-based options into your diet plan.",
		No:  "Since you avoid pork, we will not include any pork-based items in your diet.",
	},
	"allergic_to_milk": {
		Yes: "Due to your milk allergy, we will exclude all dairy products and recommend suitable alternatives.",
		No:  "Awesome! You can include dairy products like milk and cheese for added calcium.",
	},
	"allergic_to_fish": {
		Yes: "Because you're allergic to fish, we will omit all fish products from your diet.",
		No:  "You can enjoy fish, which is beneficial for its omega-3 fatty acids and protein.",
	},
	"allergic_to_soy": {
		Yes: "Since you have a soy allergy, we will eliminate soy-based foods from your meal plan.",
		No:  "Soy products can be a great addition to your diet as they are high in protein.",
	},
	"allergic_to_chicken": {
		Yes: "We will remove chicken from your diet due to your allergy.",
		No:  "Chicken will be included in your plan, providing a rich source of protein.",
	},
	"allergic_to_mussels": {
		Yes: "Mussels will be excluded from your diet plan due to your allergy.",
		No:  "Including mussels can provide you with valuable omega-3 fatty acids.",
	},
	"allergic_to_beef": {
		Yes: "Beef will not be part of your diet plan due to your allergy.",
		No:  "Beef is a great addition to your diet, offering essential protein and iron.",
	},
	"allergic_to_shrimp": {
		Yes: "Shrimp will not be part of your diet plan due to your allergy.",
		No:  "Shrimp is a great addition to your diet, offering essential shrimpiness.",
	},
}

// FeedbackFor returns the canned line for a key and answer, or "" when the
// key has no feedback entry.
func FeedbackFor(key string, answer bool) string {
	fb, ok := nutritionalFeedback[key]
	if !ok {
		return ""
	}
	if answer {
		return fb.Yes
	}
	return fb.No
}
