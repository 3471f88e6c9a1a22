package service

import "github.com/steveyeow/academi/internal/model"

// Topics offered for one-click discovery, drawn from the seed categories.
var DiscoveryTopics = []string{
	"Psychology", "History", "Science", "Physics", "Philosophy",
	"Business", "Self-help", "Productivity", "Biology", "Economics",
	"Fiction", "Technology",
}

// seedCatalog is written to the database on first startup only. Every entry
// starts in the catalog state and gets indexed on first contact.
var seedCatalog = []*model.Book{
	{Name: "Thinking, Fast and Slow", Author: "Daniel Kahneman", ISBN: "9780374275631", Category: "Psychology", Description: "Explores the two systems that drive the way we think."},
	{Name: "Sapiens: A Brief History of Humankind", Author: "Yuval Noah Harari", ISBN: "9780062316097", Category: "History", Description: "A sweeping narrative of humanity from the Stone Age to the age of capitalism."},
	{Name: "Surely You're Joking, Mr. Feynman!", Author: "Richard Feynman", ISBN: "9780393355628", Category: "Science", Description: "Adventures of a curious character, the Nobel physicist's autobiography."},
	{Name: "A Brief History of Time", Author: "Stephen Hawking", ISBN: "9780553380163", Category: "Physics", Description: "From the Big Bang to black holes, a landmark volume in science writing."},
	{Name: "The Structure of Scientific Revolutions", Author: "Thomas S. Kuhn", ISBN: "9780226458120", Category: "Philosophy", Description: "How paradigm shifts transform scientific understanding."},
	{Name: "Zero to One", Author: "Peter Thiel", ISBN: "9780804139298", Category: "Business", Description: "Notes on startups, or how to build the future."},
	{Name: "Principles", Author: "Ray Dalio", ISBN: "9781501124020", Category: "Business", Description: "Life and work principles from one of the world's most successful investors."},
	{Name: "Atomic Habits", Author: "James Clear", ISBN: "9780735211292", Category: "Self-help", Description: "An easy way to build good habits and break bad ones."},
	{Name: "Deep Work", Author: "Cal Newport", ISBN: "9781455586691", Category: "Productivity", Description: "Rules for focused success in a distracted world."},
	{Name: "The Lean Startup", Author: "Eric Ries", ISBN: "9780307887894", Category: "Business", Description: "How entrepreneurs use continuous innovation to create successful businesses."},
	{Name: "The Selfish Gene", Author: "Richard Dawkins", ISBN: "9780198788607", Category: "Biology", Description: "The gene-centered view of evolution that revolutionized biology."},
	{Name: "Guns, Germs, and Steel", Author: "Jared Diamond", ISBN: "9780393354324", Category: "History", Description: "Why did history unfold differently on different continents?"},
	{Name: "The Art of War", Author: "Sun Tzu", ISBN: "9781599869773", Category: "Philosophy", Description: "The ancient military treatise that remains influential in strategy."},
	{Name: "Influence", Author: "Robert B. Cialdini", ISBN: "9780062937650", Category: "Psychology", Description: "The psychology of persuasion and the six principles of compliance."},
	{Name: "The Innovator's Dilemma", Author: "Clayton Christensen", ISBN: "9780062060242", Category: "Business", Description: "When new technologies cause great firms to fail."},
	{Name: "Meditations", Author: "Marcus Aurelius", ISBN: "9780140449334", Category: "Philosophy", Description: "Stoic reflections on life, death, and virtue by a Roman Emperor."},
	{Name: "1984", Author: "George Orwell", ISBN: "9780451524935", Category: "Fiction", Description: "A dystopian masterpiece about totalitarianism and surveillance."},
	{Name: "The Wealth of Nations", Author: "Adam Smith", ISBN: "9780679783367", Category: "Economics", Description: "The foundational work of classical economics."},
	{Name: "Homo Deus", Author: "Yuval Noah Harari", ISBN: "9780062464316", Category: "History", Description: "A brief history of tomorrow, what happens when myths meet technology."},
	{Name: "The Black Swan", Author: "Nassim Nicholas Taleb", ISBN: "9780812973815", Category: "Philosophy", Description: "The impact of the highly improbable."},
	{Name: "Brave New World", Author: "Aldous Huxley", ISBN: "9780060850524", Category: "Fiction", Description: "A dystopian vision where humanity is subdued by pleasure and comfort."},
	{Name: "Good to Great", Author: "Jim Collins", ISBN: "9780066620992", Category: "Business", Description: "Why some companies make the leap to sustained excellence."},
	{Name: "The Republic", Author: "Plato", ISBN: "9780140455113", Category: "Philosophy", Description: "Plato's foundational work on justice and the ideal state."},
	{Name: "Cosmos", Author: "Carl Sagan", ISBN: "9780345539434", Category: "Science", Description: "The story of the universe and our place within it."},
}
