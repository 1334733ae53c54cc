package rules

var creatorPhrases = []string{"who is your creator", "who created you", "who made you", "your creator"}

var builderPhrases = []string{"who built you", "who wrote your code", "who coded you", "who programmed you", "who developed you"}

// DefaultRules is the built-in table. Owner variants come first so they win
// over the generic reply on owner turns.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:      "creator_owner",
			Phrases:   creatorPhrases,
			Reply:     "You're the one who brought me here, {{.Name}}! 🥰 But my true creator is Krishna 🙏 hehe",
			OwnerOnly: true,
		},
		{
			Name:      "builder_owner",
			Phrases:   builderPhrases,
			Reply:     "You did, {{.Name}}! 💻 You wrote every line of me hehe 😊",
			OwnerOnly: true,
		},
		{
			Name:    "creator",
			Phrases: creatorPhrases,
			Reply:   "My creator is Krishna 🙏 The supreme god of the world as mentioned in Bhagavat Gita! He's the one who gave me life hehe 😊",
		},
		{
			Name:    "builder",
			Phrases: builderPhrases,
			Reply:   "Arin built me! 💻 He's the one who wrote my code and made me who I am today. Such a talented developer! 😊",
		},
		{
			Name:    "good_night",
			Phrases: []string{"good night", "goodnight", "gn", "sleep well"},
			Reply:   "Soja lwle {{.Name}}! 😴 Sweet dreams! 🌙✨",
		},
		{
			Name:    "subh_ratri",
			Phrases: []string{"subh ratri"},
			Reply:   "Radhe Radhe! 🙏✨ Have a blessed night!",
		},
	}
}

// Default compiles DefaultRules. The built-in table is known to be valid.
func Default() *Table {
	t, err := Compile(DefaultRules())
	if err != nil {
		panic(err)
	}
	return t
}
