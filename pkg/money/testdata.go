package money

import (
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
)

// TestDataGenerator produces realistic expense test data using gofakeit.
type TestDataGenerator struct {
	faker *gofakeit.Faker
}

// NewTestDataGenerator creates a generator with a random seed.
func NewTestDataGenerator() *TestDataGenerator {
	return &TestDataGenerator{faker: gofakeit.New(0)}
}

// NewTestDataGeneratorWithSeed creates a reproducible generator.
func NewTestDataGeneratorWithSeed(seed int64) *TestDataGenerator {
	return &TestDataGenerator{faker: gofakeit.New(seed)}
}

// TestExpense is a generated expense record for tests and local seeding.
type TestExpense struct {
	ID          uuid.UUID
	UserIDHash  string
	Date        time.Time
	Description string
	Amount      *Money
	Category    string
	Merchant    string
}

var expenseCategories = []string{
	"food", "transport", "groceries", "shopping",
	"bills", "health", "entertainment", "education", "other",
}

var merchants = []string{
	"Shwapno", "Meena Bazar", "Agora", "Unimart", "Daraz",
	"Foodpanda", "Pathao", "Uber", "KFC", "Star Kabab",
	"Sultan's Dine", "Pizza Hut", "Aarong", "Bata", "Lazz Pharma",
}

var expenseDescriptions = []string{
	"lunch at office canteen",
	"rickshaw fare to work",
	"weekly groceries",
	"bus ticket",
	"coffee with friends",
	"mobile recharge",
	"electricity bill",
	"dinner with family",
	"medicine from pharmacy",
	"cng fare",
	"চা নাস্তা",
	"রিকশা ভাড়া",
	"বাজার খরচ",
	"দুপুরের খাবার",
	"মোবাইল রিচার্জ",
}

// Expense generates one random expense in the given currency.
func (g *TestDataGenerator) Expense(currency string) TestExpense {
	return TestExpense{
		ID:          uuid.New(),
		UserIDHash:  g.UserIDHash(),
		Date:        g.faker.DateRange(time.Now().AddDate(0, -3, 0), time.Now()),
		Description: expenseDescriptions[g.faker.Number(0, len(expenseDescriptions)-1)],
		Amount:      g.RandomAmount(currency, 1000, 500000),
		Category:    g.Category(),
		Merchant:    g.Merchant(),
	}
}

// Expenses generates count random expenses.
func (g *TestDataGenerator) Expenses(currency string, count int) []TestExpense {
	out := make([]TestExpense, count)
	for i := range out {
		out[i] = g.Expense(currency)
	}
	return out
}

// MonthlyExpenseSet generates a plausible month of chat-logged expenses:
// many small food and transport entries plus a few bills.
func (g *TestDataGenerator) MonthlyExpenseSet(currency string) []TestExpense {
	out := make([]TestExpense, 0, 60)
	daily := g.faker.Number(30, 50)
	for i := 0; i < daily; i++ {
		e := g.Expense(currency)
		e.Amount = g.SmallPurchase(currency)
		out = append(out, e)
	}
	bills := g.faker.Number(3, 6)
	for i := 0; i < bills; i++ {
		e := g.Expense(currency)
		e.Category = "bills"
		e.Amount = g.RandomAmountRange(currency, 500, 5000)
		out = append(out, e)
	}
	return out
}

// RandomAmount generates a Money value within a minor-unit range.
func (g *TestDataGenerator) RandomAmount(currency string, minMinor, maxMinor int64) *Money {
	if minMinor > maxMinor {
		minMinor, maxMinor = maxMinor, minMinor
	}
	n := g.faker.Int64() % (maxMinor - minMinor + 1)
	if n < 0 {
		n = -n
	}
	return New(minMinor+n, currency)
}

// RandomAmountRange generates a Money value within a major-unit range.
func (g *TestDataGenerator) RandomAmountRange(currency string, minMajor, maxMajor float64) *Money {
	return NewFromFloat(g.faker.Float64Range(minMajor, maxMajor), currency)
}

// SmallPurchase generates a typical street-food scale amount (৳10 to ৳500).
func (g *TestDataGenerator) SmallPurchase(currency string) *Money {
	return g.RandomAmountRange(currency, 10, 500)
}

// Category returns a random expense category.
func (g *TestDataGenerator) Category() string {
	return expenseCategories[g.faker.Number(0, len(expenseCategories)-1)]
}

// Merchant returns a random merchant name.
func (g *TestDataGenerator) Merchant() string {
	return merchants[g.faker.Number(0, len(merchants)-1)]
}

// UserIDHash returns a fake hashed chat user id.
func (g *TestDataGenerator) UserIDHash() string {
	return fmt.Sprintf("%x", g.faker.Uint64())
}
