package game

// Question is one quiz prompt. Alternates are accepted spellings or
// translations of the answer.
type Question struct {
	Prompt     string
	Answer     string
	Alternates []string
}

var quizQuestions = []Question{
	{Prompt: "Which planet is known as the Red Planet?", Answer: "Mars"},
	{Prompt: "What is the largest ocean on Earth?", Answer: "Pacific", Alternates: []string{"Pacific Ocean"}},
	{Prompt: "How many continents are there?", Answer: "seven", Alternates: []string{"7"}},
	{Prompt: "What is the capital of Japan?", Answer: "Tokyo"},
	{Prompt: "Which element has the chemical symbol O?", Answer: "oxygen"},
	{Prompt: "What is the longest river in the world?", Answer: "Nile", Alternates: []string{"Amazon"}},
	{Prompt: "In which sport is a shuttlecock used?", Answer: "badminton"},
	{Prompt: "How many strings does a standard guitar have?", Answer: "six", Alternates: []string{"6"}},
	{Prompt: "What is the smallest prime number?", Answer: "two", Alternates: []string{"2"}},
	{Prompt: "Which country gifted the Statue of Liberty to the USA?", Answer: "France"},
	{Prompt: "What is the chemical formula of water?", Answer: "H2O"},
	{Prompt: "Which animal is the tallest living land animal?", Answer: "giraffe"},
	{Prompt: "What is the capital of Serbia?", Answer: "Belgrade", Alternates: []string{"Beograd"}},
	{Prompt: "How many players are on a volleyball team on court?", Answer: "six", Alternates: []string{"6"}},
	{Prompt: "Which instrument has 88 keys?", Answer: "piano"},
	{Prompt: "What is the largest mammal?", Answer: "blue whale", Alternates: []string{"whale"}},
	{Prompt: "In which city is the Colosseum?", Answer: "Rome", Alternates: []string{"Roma"}},
	{Prompt: "What do bees produce?", Answer: "honey"},
	{Prompt: "How many sides does a hexagon have?", Answer: "six", Alternates: []string{"6"}},
	{Prompt: "Which gas do plants absorb from the air?", Answer: "carbon dioxide", Alternates: []string{"CO2"}},
	{Prompt: "What is the fastest land animal?", Answer: "cheetah"},
	{Prompt: "Which month has 28 or 29 days?", Answer: "February"},
	{Prompt: "What is the currency of the United Kingdom?", Answer: "pound", Alternates: []string{"pound sterling", "GBP"}},
	{Prompt: "How many colors are in a rainbow?", Answer: "seven", Alternates: []string{"7"}},
}
