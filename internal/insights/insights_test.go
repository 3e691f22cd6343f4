package insights

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartfinance/internal/core"
	"smartfinance/internal/kv"
	"smartfinance/internal/log"
	"smartfinance/internal/records"
)

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func newEngine(t *testing.T) (*Engine, *records.Store) {
	t.Helper()
	s, err := records.New(context.Background(), kv.NewMemory(), "u1",
		records.WithClock(func() time.Time { return testNow }),
		records.WithLocation(time.UTC),
		records.WithLogger(log.Discard()))
	require.NoError(t, err)
	return New(s), s
}

func add(t *testing.T, s *records.Store, amount, cat, date string, typ core.TransactionType) {
	t.Helper()
	_, err := s.AddTransaction(context.Background(), records.NewTransaction{
		Description: "entry", Amount: amount, Category: cat, Date: date, Type: typ,
	})
	require.NoError(t, err)
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func titles(in []Insight) []string {
	out := make([]string, len(in))
	for i, x := range in {
		out[i] = x.Title
	}
	return out
}

func TestPercentageChange(t *testing.T) {
	tests := []struct {
		name              string
		current, previous float64
		want              float64
	}{
		{"from zero up", 50, 0, 100},
		{"from zero flat", 0, 0, 0},
		{"from zero down", -10, 0, 0},
		{"increase", 150, 100, 50},
		{"decrease", 50, 100, -50},
		{"negative base", -50, -100, 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, PercentageChange(tt.current, tt.previous), 1e-9)
		})
	}
}

func TestGenerateWelcome(t *testing.T) {
	e, _ := newEngine(t)

	got := e.Generate(context.Background())
	require.Len(t, got, 1)
	assert.Equal(t, TypeWelcome, got[0].Type)
	assert.Equal(t, "Welcome to SmartFinance!", got[0].Title)
	assert.Equal(t, "add-transaction", got[0].Action)
}

func TestGenerateSpendingAlert(t *testing.T) {
	e, s := newEngine(t)
	add(t, s, "100", "cat_food", "2025-06-10", core.Income)
	add(t, s, "150", "cat_food", "2025-06-11", core.Expense)

	got := e.Generate(context.Background())
	assert.Equal(t, []string{"Spending Alert", "Top Spending Category"}, titles(got))
	assert.Equal(t, "You spend most on Food. Consider setting a budget to track this category better.", got[1].Message)
}

func TestGenerateSavingsRate(t *testing.T) {
	tests := []struct {
		name    string
		expense string
		want    []string
	}{
		{"great", "500", []string{"Great Savings!", "Top Spending Category"}},
		{"low", "950", []string{"Boost Your Savings", "Top Spending Category"}},
		{"middle", "850", []string{"Top Spending Category"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, s := newEngine(t)
			add(t, s, "1000", "cat_other", "2025-06-01", core.Income)
			add(t, s, tt.expense, "cat_books", "2025-06-02", core.Expense)

			assert.Equal(t, tt.want, titles(e.Generate(context.Background())))
		})
	}
}

func TestGenerateSavingsMessage(t *testing.T) {
	e, s := newEngine(t)
	add(t, s, "1000", "cat_other", "2025-06-01", core.Income)
	add(t, s, "250", "cat_books", "2025-06-02", core.Expense)

	got := e.Generate(context.Background())
	require.NotEmpty(t, got)
	assert.Equal(t, "You're saving 75.0% of your income. Keep up the excellent work!", got[0].Message)
}

func TestTopCategoryTieBreaksByID(t *testing.T) {
	e, s := newEngine(t)
	add(t, s, "40", "cat_transport", "2025-06-03", core.Expense)
	add(t, s, "40", "cat_books", "2025-06-03", core.Expense)

	got := e.Generate(context.Background())
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Message, "Books")
}

func TestTopCategorySkippedWhenMissing(t *testing.T) {
	e, s := newEngine(t)
	add(t, s, "40", "cat_gone", "2025-06-03", core.Expense)

	assert.Empty(t, e.Generate(context.Background()))
}

func TestGenerateFrequentAndTruncated(t *testing.T) {
	e, s := newEngine(t)
	add(t, s, "100", "cat_other", "2025-06-10", core.Income)
	for i := 0; i < 21; i++ {
		add(t, s, "10", "cat_food", fmt.Sprintf("2025-06-%02d", 10+i%5), core.Expense)
	}

	got := e.Generate(context.Background())
	assert.Equal(t, []string{"Spending Alert", "Top Spending Category", "Frequent Transactions"}, titles(got))
	assert.Equal(t, "You've made 22 transactions in the last week. Consider consolidating small expenses.", got[2].Message)

	add(t, s, "5000", "cat_other", "2025-06-12", core.Income)
	got = e.Generate(context.Background())
	assert.Len(t, got, 3)
	assert.Equal(t, "Great Savings!", got[0].Title)
}

func TestFrequentIgnoresOlderTransactions(t *testing.T) {
	e, s := newEngine(t)
	for i := 0; i < 25; i++ {
		add(t, s, "1", "cat_food", "2025-06-01", core.Expense)
	}

	assert.NotContains(t, titles(e.Generate(context.Background())), "Frequent Transactions")
}

func TestSummary(t *testing.T) {
	e, s := newEngine(t)
	add(t, s, "200", "cat_other", "2025-05-10", core.Income)
	add(t, s, "100", "cat_food", "2025-05-11", core.Expense)
	add(t, s, "300", "cat_other", "2025-06-10", core.Income)
	add(t, s, "100", "cat_food", "2025-06-11", core.Expense)

	goal := dec("400")
	sum := e.Summary(context.Background(), core.User{Currency: "EUR", SavingsGoal: &goal})

	assert.Equal(t, "EUR", sum.Currency)
	assert.True(t, dec("200").Equal(sum.Current.Balance))
	assert.True(t, dec("100").Equal(sum.Previous.Balance))
	assert.Equal(t, "+100.0% from last month", sum.BalanceChange.Text)
	assert.Equal(t, "+50.0% from last month", sum.IncomeChange.Text)
	assert.Equal(t, Neutral, sum.ExpensesChange.Direction)
	assert.Equal(t, "No change from last month", sum.ExpensesChange.Text)
	assert.True(t, dec("200").Equal(sum.Savings.Saved))
	assert.InDelta(t, 50, sum.Savings.Percentage, 1e-9)
}

func TestSummaryEmptyMonth(t *testing.T) {
	e, _ := newEngine(t)

	sum := e.Summary(context.Background(), core.User{})
	assert.Equal(t, "USD", sum.Currency)
	assert.Equal(t, "No transactions yet", sum.BalanceChange.Text)
	assert.Equal(t, "Start adding income", sum.IncomeChange.Text)
	assert.Equal(t, "Track your spending", sum.ExpensesChange.Text)
	assert.True(t, DefaultSavingsGoal.Equal(sum.Savings.Goal))
	assert.Zero(t, sum.Savings.Percentage)
}

func TestNewChangeNegative(t *testing.T) {
	c := NewChange(dec("75"), dec("100"), "")
	assert.Equal(t, Negative, c.Direction)
	assert.Equal(t, "-25.0% from last month", c.Text)
}

func TestNewSavings(t *testing.T) {
	zero := decimal.Zero
	s := NewSavings(dec("-20"), &zero)
	assert.True(t, s.Saved.IsZero())
	assert.True(t, DefaultSavingsGoal.Equal(s.Goal))

	s = NewSavings(dec("750"), nil)
	assert.InDelta(t, 150, s.Percentage, 1e-9)
}

func TestCategoryProgress(t *testing.T) {
	e, s := newEngine(t)
	add(t, s, "310", "cat_food", "2025-06-02", core.Expense)
	add(t, s, "170", "cat_books", "2025-06-02", core.Expense)
	add(t, s, "90", "cat_transport", "2025-05-02", core.Expense)
	add(t, s, "90", "cat_transport", "2025-06-02", core.Income)

	got := e.CategoryProgress(context.Background())
	require.Len(t, got, 6)

	byID := map[string]Progress{}
	for _, p := range got {
		byID[p.Category.ID] = p
	}
	assert.Equal(t, StatusOverBudget, byID["cat_food"].Status)
	assert.Equal(t, "🍔", byID["cat_food"].Icon)
	assert.Equal(t, StatusWarning, byID["cat_books"].Status)
	assert.InDelta(t, 85, byID["cat_books"].Percentage, 1e-9)
	assert.Equal(t, StatusGood, byID["cat_transport"].Status)
	assert.True(t, byID["cat_transport"].Spent.IsZero())
}

func TestCategoryIconFallback(t *testing.T) {
	assert.Equal(t, "📁", CategoryIcon("cat_custom"))
}

func TestNewGreeting(t *testing.T) {
	tests := []struct {
		hour int
		user core.User
		want Greeting
	}{
		{8, core.User{FirstName: "Ada", Name: "ada"}, Greeting{"morning", "Ada", "Ready to start your financial day right?"}},
		{12, core.User{Name: "ada"}, Greeting{"afternoon", "ada", "How are your finances looking today?"}},
		{17, core.User{}, Greeting{"evening", "Student", "Time to review your financial progress!"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NewGreeting(tt.hour, tt.user))
	}
}

func TestRelativeDate(t *testing.T) {
	tests := []struct {
		date, want string
	}{
		{"2025-06-15", "Today"},
		{"2025-06-14", "Yesterday"},
		{"2025-06-10", "5 days ago"},
		{"2025-06-01", "6/1/2025"},
		{"2025-06-20", "6/20/2025"},
		{"soon", "soon"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RelativeDate(tt.date, testNow), tt.date)
	}
}

func TestFormatCurrency(t *testing.T) {
	assert.Equal(t, "₦1500.00", FormatCurrency(dec("1500"), "NGN"))
	assert.Equal(t, "$12.50", FormatCurrency(dec("-12.5"), "XYZ"))
}

func TestDashboard(t *testing.T) {
	e, s := newEngine(t)
	for i := 0; i < 7; i++ {
		add(t, s, "10", "cat_food", fmt.Sprintf("2025-06-%02d", 1+i), core.Expense)
	}

	d := e.Dashboard(context.Background(), core.User{FirstName: "Lin"})
	assert.Equal(t, "afternoon", d.Greeting.TimeOfDay)
	assert.Len(t, d.Recent, recentLimit)
	assert.Equal(t, "2025-06-07", d.Recent[0].Date)
	assert.Len(t, d.Categories, 6)
	assert.Len(t, d.Trend, 7)
}
