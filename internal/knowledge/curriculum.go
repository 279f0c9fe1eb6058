package knowledge

import (
	"github.com/eduagents/tutord/internal/domain"
)

// curriculum is the built-in question bank, keyed by subject:level. The
// catalog handed to the tutor engine is derived from these keys, so catalog
// membership and served content can never drift apart.
var curriculum = map[domain.CurriculumKey][]domain.Question{
	{Subject: "Math", Level: "Beginner"}: {
		{Topic: "Arithmetic", Text: "What is 5 + 3?", Answer: "8", Explanation: "Adding 5 and 3 gives 8."},
		{Topic: "Arithmetic", Text: "What is 12 - 4?", Answer: "8", Explanation: "Subtracting 4 from 12 leaves 8."},
		{Topic: "Number Sense", Text: "Which number is larger: 17 or 71?", Answer: "71", Explanation: "71 has 7 tens while 17 has only 1 ten."},
	},
	{Subject: "Math", Level: "Intermediate"}: {
		{Topic: "Algebra", Text: "Solve for x: 2x + 6 = 14", Answer: "4", Explanation: "Subtract 6 from both sides, then divide by 2."},
		{Topic: "Fractions", Text: "What is 1/2 + 1/4 as a fraction?", Answer: "3/4", Explanation: "Convert 1/2 to 2/4, then add the quarters."},
	},
	{Subject: "Math", Level: "Advanced"}: {
		{Topic: "Calculus", Text: "What is the derivative of x^2?", Answer: "2x", Explanation: "Apply the power rule: d/dx x^n = n*x^(n-1)."},
	},
	{Subject: "History", Level: "Beginner"}: {
		{Topic: "Ancient Egypt", Text: "On which river did ancient Egypt develop?", Answer: "Nile", Explanation: "Egyptian civilization grew along the Nile's floodplain."},
		{Topic: "Exploration", Text: "In what year did Columbus first reach the Americas?", Answer: "1492", Explanation: "Columbus made landfall in the Caribbean in 1492."},
	},
	{Subject: "History", Level: "Intermediate"}: {
		{Topic: "World Wars", Text: "In what year did World War II end?", Answer: "1945", Explanation: "The war ended with Japan's surrender in 1945."},
	},
	{Subject: "Science", Level: "Beginner"}: {
		{Topic: "Chemistry", Text: "What is the chemical symbol for water?", Answer: "H2O", Explanation: "Each water molecule has two hydrogen atoms and one oxygen atom."},
		{Topic: "Astronomy", Text: "Which planet is closest to the Sun?", Answer: "Mercury", Explanation: "Mercury orbits nearest the Sun."},
	},
	{Subject: "Science", Level: "Intermediate"}: {
		{Topic: "Biology", Text: "What organelle is known as the powerhouse of the cell?", Answer: "Mitochondria", Explanation: "Mitochondria produce most of the cell's ATP."},
	},
	{Subject: "English", Level: "Beginner"}: {
		{Topic: "Grammar", Text: "What is the plural of 'child'?", Answer: "children", Explanation: "'Child' takes the irregular plural 'children'."},
	},
	{Subject: "Geography", Level: "Beginner"}: {
		{Topic: "Capitals", Text: "What is the capital of France?", Answer: "Paris", Explanation: "Paris has been France's capital since the Middle Ages."},
	},
	{Subject: "Literature", Level: "Beginner"}: {
		{Topic: "Shakespeare", Text: "Who wrote 'Romeo and Juliet'?", Answer: "Shakespeare", Explanation: "William Shakespeare wrote the play around 1595."},
	},
	{Subject: "Physics", Level: "Beginner"}: {
		{Topic: "Mechanics", Text: "What force pulls objects toward the Earth?", Answer: "gravity", Explanation: "Gravity attracts masses toward each other."},
	},
	{Subject: "Computer Science", Level: "Beginner"}: {
		{Topic: "Binary", Text: "What is the binary number 10 in decimal?", Answer: "2", Explanation: "Binary 10 is one two and zero ones."},
	},
	{Subject: "Art History", Level: "Beginner"}: {
		{Topic: "Renaissance", Text: "Who painted the Mona Lisa?", Answer: "Leonardo da Vinci", Explanation: "Leonardo painted it in the early 1500s."},
	},
}

// Catalog returns the authoritative subject/level pairs served by this
// curriculum.
func Catalog() *domain.Catalog {
	keys := make([]domain.CurriculumKey, 0, len(curriculum))
	for k := range curriculum {
		keys = append(keys, k)
	}
	return domain.NewCatalog(keys...)
}
