package categorization

// Category names used across the assistant. Stored on expenses as plain
// strings so user corrections can introduce new ones without a migration.
const (
	CategoryFood          = "food"
	CategoryTransport     = "transport"
	CategoryShopping      = "shopping"
	CategoryBills         = "bills"
	CategoryHealth        = "health"
	CategoryGroceries     = "groceries"
	CategoryEntertainment = "entertainment"
	CategoryEducation     = "education"
	CategoryOther         = "other"
)

// defaultKeywords maps each category to its bilingual keyword set. All
// entries are lowercase; input is expected to be normalized already.
var defaultKeywords = map[string][]string{
	CategoryFood: {
		"food", "coffee", "tea", "lunch", "dinner", "breakfast", "snack",
		"burger", "pizza", "rice", "biryani", "restaurant", "juice", "cake",
		"খাবার", "চা", "কফি", "নাস্তা", "ভাত", "বিরিয়ানি", "রেস্টুরেন্ট", "মিষ্টি",
	},
	CategoryTransport: {
		"transport", "bus", "train", "uber", "pathao", "rickshaw", "cng",
		"fuel", "petrol", "taxi", "fare",
		"বাস", "ট্রেন", "রিকশা", "সিএনজি", "ভাড়া", "তেল",
	},
	CategoryShopping: {
		"shopping", "clothes", "shoes", "dress", "shirt", "market",
		"কেনাকাটা", "জামা", "জুতা", "বাজার",
	},
	CategoryBills: {
		"bill", "bills", "electricity", "internet", "recharge", "rent",
		"wifi", "gas bill",
		"বিল", "বিদ্যুৎ", "ইন্টারনেট", "রিচার্জ", "ভাড়া বিল",
	},
	CategoryHealth: {
		"health", "medicine", "doctor", "hospital", "pharmacy",
		"ঔষধ", "ডাক্তার", "হাসপাতাল", "ফার্মেসি",
	},
	CategoryGroceries: {
		"groceries", "grocery", "vegetables", "fish", "meat", "milk", "egg",
		"মুদি", "সবজি", "মাছ", "মাংস", "দুধ", "ডিম",
	},
	CategoryEntertainment: {
		"movie", "cinema", "game", "netflix", "concert",
		"সিনেমা", "খেলা", "গান",
	},
	CategoryEducation: {
		"book", "books", "course", "tuition", "exam fee",
		"বই", "কোর্স", "টিউশন",
	},
}
